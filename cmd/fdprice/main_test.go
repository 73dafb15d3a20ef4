package main

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/meenmo/fdm/config"
)

func testConfig() config.Config {
	c := config.DefaultConfig
	c.XGrid = 201
	c.TimeSteps = 200
	c.DampingSteps = 2
	return c
}

func TestParseInputs(t *testing.T) {
	t.Parallel()

	in, isArray, err := parseInputs([]byte(` {"task_id":"a","model":"black_scholes"} `))
	require.NoError(t, err)
	assert.False(t, isArray)
	require.Len(t, in, 1)
	assert.Equal(t, "a", in[0].TaskID)

	in, isArray, err = parseInputs([]byte(`[{"task_id":"a"},{"task_id":"b"}]`))
	require.NoError(t, err)
	assert.True(t, isArray)
	assert.Len(t, in, 2)

	_, _, err = parseInputs([]byte("  "))
	assert.Error(t, err)
	_, _, err = parseInputs([]byte("[]"))
	assert.Error(t, err)
	_, _, err = parseInputs([]byte("{"))
	assert.Error(t, err)
}

const europeanCall = `{
	"task_id": "eu-call",
	"model": "black_scholes",
	"reference_date": "2025-01-02",
	"option_type": "call",
	"exercise": "european",
	"expiry": "2026-01-02",
	"strike": 100,
	"spot": 100,
	"vol": 0.2,
	"rate": 0.05,
	"precision": 4
}`

func TestProcessEuropeanCall(t *testing.T) {
	t.Parallel()

	var in priceInput
	require.NoError(t, json.Unmarshal([]byte(europeanCall), &in))
	out, err := process(in, testConfig(), zerolog.Nop())
	require.NoError(t, err)

	require.NotNil(t, out.AnalyticNPV)
	assert.Equal(t, 10.4506, *out.AnalyticNPV)
	assert.InEpsilon(t, *out.AnalyticNPV, out.NPV, 2e-3)
	require.NotNil(t, out.Delta)
	assert.InDelta(t, 0.6368, *out.Delta, 5e-3)
	require.NotNil(t, out.Theta)
	assert.Equal(t, "douglas", out.Scheme)
}

func TestProcessBermudanFromFrequency(t *testing.T) {
	t.Parallel()

	in := priceInput{
		TaskID: "bm", Model: modelBlackScholes, ReferenceDate: "2025-01-02",
		OptionType: "put", Exercise: "bermudan", Expiry: "2026-01-02",
		ExerciseFrequencyMonths: 3, Calendar: "target",
		Strike: 105, Spot: 100, Vol: 0.25, Rate: 0.05,
		Grid: &gridJSON{Scheme: "crank-nicolson", XGrid: 151, TimeSteps: 100},
	}
	out, err := process(in, testConfig(), zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, out.AnalyticNPV)
	assert.Equal(t, "crank-nicolson", out.Scheme)
	assert.Greater(t, out.NPV, 5.0)
}

func TestProcessHullWhite(t *testing.T) {
	t.Parallel()

	in := priceInput{
		TaskID: "zbo", Model: modelHullWhite, ReferenceDate: "2025-01-02",
		OptionType: "call", Exercise: "european", Expiry: "2026-01-02",
		BondMaturity: "2030-01-01", Strike: 0.89, Rate: 0.03,
		MeanReversion: 0.1, Sigma: 0.01,
	}
	out, err := process(in, testConfig(), zerolog.Nop())
	require.NoError(t, err)
	require.NotNil(t, out.AnalyticNPV)
	assert.InDelta(t, *out.AnalyticNPV, out.NPV, 2e-4)
	assert.Nil(t, out.Delta)
}

func TestProcessRejects(t *testing.T) {
	t.Parallel()

	base := priceInput{
		Model: modelBlackScholes, ReferenceDate: "2025-01-02",
		OptionType: "call", Exercise: "european", Expiry: "2026-01-02",
		Strike: 100, Spot: 100, Vol: 0.2, Rate: 0.05,
	}
	cases := map[string]func(*priceInput){
		"model":     func(in *priceInput) { in.Model = "heston" },
		"date":      func(in *priceInput) { in.ReferenceDate = "02/01/2025" },
		"type":      func(in *priceInput) { in.OptionType = "straddle" },
		"exercise":  func(in *priceInput) { in.Exercise = "asian" },
		"scheme":    func(in *priceInput) { in.Grid = &gridJSON{Scheme: "leapfrog"} },
		"day count": func(in *priceInput) { in.DayCount = "BUS/252" },
		"expired":   func(in *priceInput) { in.ReferenceDate = "2026-06-01" },
		"calendar": func(in *priceInput) {
			in.Exercise = "bermudan"
			in.ExerciseFrequencyMonths = 3
			in.Calendar = "TARGT"
		},
	}
	for name, mutate := range cases {
		in := base
		mutate(&in)
		_, err := process(in, testConfig(), zerolog.Nop())
		assert.Error(t, err, name)
	}
}

func TestRunAssignsTaskIDsAndFlagsErrors(t *testing.T) {
	t.Parallel()

	inputs := []priceInput{
		{Model: "heston"},
		{TaskID: "keep", Model: "heston"},
	}
	outputs, hadError := run(inputs, testConfig(), zerolog.Nop())
	assert.True(t, hadError)
	require.Len(t, outputs, 2)

	_, err := uuid.Parse(outputs[0].TaskID)
	assert.NoError(t, err)
	assert.Equal(t, "keep", outputs[1].TaskID)
	assert.NotEmpty(t, outputs[1].Error)
}

func TestEncodeMsgpack(t *testing.T) {
	t.Parallel()

	theta := -6.4140
	b, err := encode("msgpack", priceOutput{TaskID: "x", NPV: 10.4506, Theta: &theta})
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, msgpack.Unmarshal(b, &got))
	assert.Equal(t, "x", got["task_id"])
	assert.Equal(t, 10.4506, got["npv"])
	assert.Equal(t, theta, got["theta"])
	assert.NotContains(t, got, "delta")

	_, err = encode("xml", priceOutput{})
	assert.Error(t, err)
}
