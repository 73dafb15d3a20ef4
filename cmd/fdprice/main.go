package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/meenmo/fdm/config"
	"github.com/meenmo/fdm/logger"
)

func main() {
	inputPath := flag.String("input", "", "JSON input path (reads stdin if omitted)")
	format := flag.String("format", "json", "output format: json or msgpack")
	envFile := flag.String("env", "", "env file with FDM_* settings (default .env)")
	pretty := flag.Bool("pretty", false, "human readable logs on stderr")
	help := flag.Bool("h", false, "Show help")
	flag.BoolVar(help, "help", false, "Show help")
	flag.Parse()

	if *help {
		fmt.Fprintln(os.Stderr, "Usage: fdprice [-input <path>] [-format json|msgpack] [-env <file>]")
		fmt.Fprintln(os.Stderr, "Price vanilla and zero-bond options with finite differences.")
		return
	}

	var files []string
	if f := strings.TrimSpace(*envFile); f != "" {
		files = append(files, f)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		exitError(*format, fmt.Sprintf("load config: %v", err))
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: *pretty}).
		With().Str("component", "fdprice").Logger()

	path := strings.TrimSpace(*inputPath)
	if path == "" {
		if stat, err := os.Stdin.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) != 0 {
			fmt.Fprintln(os.Stderr, "Usage: fdprice -input <path>")
			os.Exit(2)
		}
	}

	raw, err := readInput(path)
	if err != nil {
		exitError(*format, fmt.Sprintf("read input: %v", err))
	}

	inputs, isArray, err := parseInputs(raw)
	if err != nil {
		exitError(*format, fmt.Sprintf("parse JSON: %v", err))
	}

	outputs, hadError := run(inputs, cfg, log)

	var payload any = outputs
	if !isArray {
		payload = outputs[0]
	}
	b, err := encode(*format, payload)
	if err != nil {
		exitError("json", fmt.Sprintf("encode output: %v", err))
	}
	os.Stdout.Write(b)
	if *format != "msgpack" {
		fmt.Println()
	}

	if hadError {
		os.Exit(1)
	}
}

// run prices every input and reports whether any of them failed.
func run(inputs []priceInput, cfg config.Config, log zerolog.Logger) ([]priceOutput, bool) {
	hadError := false
	outputs := make([]priceOutput, 0, len(inputs))
	for _, in := range inputs {
		in.ensureTaskID()
		out, err := process(in, cfg, log)
		if err != nil {
			hadError = true
			log.Error().Err(err).Str("task_id", in.TaskID).Msg("pricing failed")
			outputs = append(outputs, priceOutput{TaskID: in.TaskID, Model: in.Model, Error: err.Error()})
			continue
		}
		log.Info().Str("task_id", out.TaskID).Str("model", out.Model).Float64("npv", out.NPV).Msg("priced")
		outputs = append(outputs, *out)
	}
	return outputs, hadError
}

func encode(format string, v any) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		return json.Marshal(v)
	case "msgpack":
		return msgpack.Marshal(v)
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

func readInput(path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(os.Stdin)
}

func parseInputs(raw []byte) ([]priceInput, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("empty input")
	}
	if trimmed[0] == '[' {
		var inputs []priceInput
		if err := json.Unmarshal(trimmed, &inputs); err != nil {
			return nil, true, err
		}
		if len(inputs) == 0 {
			return nil, true, fmt.Errorf("empty input array")
		}
		return inputs, true, nil
	}
	var input priceInput
	if err := json.Unmarshal(trimmed, &input); err != nil {
		return nil, false, err
	}
	return []priceInput{input}, false, nil
}

func exitError(format, msg string) {
	if b, err := encode(format, priceOutput{Error: msg}); err == nil {
		os.Stdout.Write(b)
	} else {
		b, _ = json.Marshal(priceOutput{Error: msg})
		os.Stdout.Write(b)
	}
	fmt.Println()
	os.Exit(1)
}
