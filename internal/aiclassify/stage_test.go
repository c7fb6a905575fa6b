package aiclassify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/paisatrack/paisatrack/internal/llm"
	"github.com/paisatrack/paisatrack/internal/model"
)

// scriptedClient replays canned responses in call order.
type scriptedClient struct {
	responses []string
	err       error
	requests  []llm.ChatRequest
}

func (c *scriptedClient) Send(_ context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	c.requests = append(c.requests, req)
	if c.err != nil {
		return llm.ChatResponse{}, c.err
	}
	content := c.responses[0]
	if len(c.responses) > 1 {
		c.responses = c.responses[1:]
	}
	return llm.ChatResponse{
		Choices: []llm.Choice{{Message: llm.Message{Role: "assistant", Content: content}}},
	}, nil
}

func classifiedRow(narration string) model.ClassifiedRow {
	amount := decimal.RequireFromString("250")
	date := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	return model.ClassifiedRow{
		RawRow: model.RawRow{
			Narration: narration,
			Amount:    &amount,
			Date:      &date,
			Direction: model.DirectionExpense,
		},
		Tags:         []string{},
		ClassifiedBy: model.ClassifiedByRule,
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Concurrency = 1
	cfg.Retries = 0
	cfg.Backoff = time.Millisecond
	return cfg
}

func TestClassifyRows(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`[{"category":"Food","platform":"Zomato","payment_method":"UPI","confidence":0.85},
		  {"category":"Transport","platform":"","payment_method":"","confidence":0.7}]`,
	}}
	stage := NewStage(client, testConfig())

	rows := []model.ClassifiedRow{
		classifiedRow("UPI-ZOMATO-404912"),
		classifiedRow("FASTAG RECHARGE NHAI"),
	}

	out, err := stage.ClassifyRows(context.Background(), rows, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "Food", out[0].Category)
	assert.Equal(t, "Zomato", out[0].Platform)
	assert.Equal(t, "UPI", out[0].PaymentMethod)
	assert.Equal(t, 0.85, out[0].Confidence.Category)
	assert.Equal(t, model.ClassifiedByAI, out[0].ClassifiedBy)

	assert.Equal(t, "Transport", out[1].Category)
	assert.Empty(t, out[1].Platform)
	assert.Equal(t, model.ClassifiedByAI, out[1].ClassifiedBy)

	require.Len(t, client.requests, 1)
	req := client.requests[0]
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Contains(t, req.Messages[1].Content, "UPI-ZOMATO-404912")
}

func TestClassifyRowsShortReplyKeepsRuleResult(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`[{"category":"Food","platform":"","payment_method":"","confidence":0.9}]`,
	}}
	stage := NewStage(client, testConfig())

	rows := []model.ClassifiedRow{
		classifiedRow("UPI-ZOMATO-404912"),
		classifiedRow("SOMETHING OBSCURE"),
	}
	rows[1].Category = "Utilities"

	out, err := stage.ClassifyRows(context.Background(), rows, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, model.ClassifiedByAI, out[0].ClassifiedBy)

	// The row past the reply keeps its rule-stage classification.
	assert.Equal(t, "Utilities", out[1].Category)
	assert.Equal(t, model.ClassifiedByRule, out[1].ClassifiedBy)
}

func TestClassifyRowsFencedReply(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"```json\n[{\"category\":\"Shopping\",\"platform\":\"Amazon\",\"payment_method\":\"Card\",\"confidence\":0.8}]\n```",
	}}
	stage := NewStage(client, testConfig())

	out, err := stage.ClassifyRows(context.Background(), []model.ClassifiedRow{classifiedRow("ECOM AMAZON")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Shopping", out[0].Category)
	assert.Equal(t, "Amazon", out[0].Platform)
}

func TestClassifyRowsAllEmptyReplyLeavesRowUntouched(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`[{"category":"","platform":"","payment_method":"","confidence":0.1}]`,
	}}
	stage := NewStage(client, testConfig())

	row := classifiedRow("CHQ DEP 000123")
	out, err := stage.ClassifyRows(context.Background(), []model.ClassifiedRow{row}, nil)
	require.NoError(t, err)
	assert.Equal(t, model.ClassifiedByRule, out[0].ClassifiedBy)
	assert.Empty(t, out[0].Category)
}

func TestClassifyRowsProviderErrorPropagates(t *testing.T) {
	boom := errors.New("provider down")
	client := &scriptedClient{err: boom}
	stage := NewStage(client, testConfig())

	_, err := stage.ClassifyRows(context.Background(), []model.ClassifiedRow{classifiedRow("X")}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, client.requests, 1, "retries disabled in test config")
}

func TestClassifyRowsUnparseableReplyFails(t *testing.T) {
	client := &scriptedClient{responses: []string{"sorry, I cannot help with that"}}
	stage := NewStage(client, testConfig())

	_, err := stage.ClassifyRows(context.Background(), []model.ClassifiedRow{classifiedRow("X")}, nil)
	require.Error(t, err)
}

func TestClassifyRowsProgress(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`[{"category":"Food","platform":"","payment_method":"","confidence":0.9}]`,
	}}
	cfg := testConfig()
	cfg.BatchSize = 1
	stage := NewStage(client, cfg)

	var reports [][2]int
	onProgress := func(done, total int) {
		reports = append(reports, [2]int{done, total})
	}

	rows := []model.ClassifiedRow{classifiedRow("A"), classifiedRow("B"), classifiedRow("C")}
	_, err := stage.ClassifyRows(context.Background(), rows, onProgress)
	require.NoError(t, err)

	require.Len(t, reports, 3)
	assert.Equal(t, [2]int{3, 3}, reports[2])
}

func TestClassifyRowsOffline(t *testing.T) {
	client, err := llm.NewClient(llm.Config{Provider: "offline"})
	require.NoError(t, err)
	stage := NewStage(client, testConfig())

	rows := []model.ClassifiedRow{classifiedRow("A"), classifiedRow("B")}
	out, err := stage.ClassifyRows(context.Background(), rows, nil)
	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, row := range out {
		assert.Equal(t, "Other", row.Category)
		assert.Equal(t, 0.5, row.Confidence.Category)
		assert.Equal(t, model.ClassifiedByAI, row.ClassifiedBy)
	}
}

func TestDecodeReply(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{name: "plain array", content: `[{"category":"Food","confidence":0.9}]`, want: 1},
		{name: "fenced with language", content: "```json\n[]\n```", want: 0},
		{name: "fenced without language", content: "```\n[{\"category\":\"X\"}]\n```", want: 1},
		{name: "surrounding whitespace", content: "  [ ]  ", want: 0},
		{name: "prose reply", content: "here are your results", wantErr: true},
		{name: "object instead of array", content: `{"category":"Food"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := decodeReply(tt.content)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, items, tt.want)
		})
	}
}
