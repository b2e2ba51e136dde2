package oracle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dynamic-campus/leadgen-cli/internal/model"
	"github.com/dynamic-campus/leadgen-cli/pkg/anthropic"
)

type mockAIClient struct {
	mock.Mock
}

func (m *mockAIClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}

func newTestClassifier(client anthropic.Client) Classifier {
	return New(client, Options{Model: "test-model"})
}

func TestExtractInstitutions(t *testing.T) {
	t.Run("parses list and trims blanks", func(t *testing.T) {
		client := &mockAIClient{}
		client.On("CreateMessage", mock.Anything, mock.Anything).
			Return(textResponse(`{"institutions": ["Acme State University", "  ", "Bayside College"]}`), nil)

		got, err := newTestClassifier(client).ExtractInstitutions(context.Background(), "some text")
		require.NoError(t, err)
		assert.Equal(t, []string{"Acme State University", "Bayside College"}, got)
	})

	t.Run("fenced json accepted", func(t *testing.T) {
		client := &mockAIClient{}
		client.On("CreateMessage", mock.Anything, mock.Anything).
			Return(textResponse("```json\n{\"institutions\": [\"Acme State University\"]}\n```"), nil)

		got, err := newTestClassifier(client).ExtractInstitutions(context.Background(), "text")
		require.NoError(t, err)
		assert.Equal(t, []string{"Acme State University"}, got)
	})

	t.Run("transport error propagates", func(t *testing.T) {
		client := &mockAIClient{}
		client.On("CreateMessage", mock.Anything, mock.Anything).
			Return(nil, errors.New("api unreachable"))

		_, err := newTestClassifier(client).ExtractInstitutions(context.Background(), "text")
		assert.Error(t, err)
	})

	t.Run("garbage payload errors", func(t *testing.T) {
		client := &mockAIClient{}
		client.On("CreateMessage", mock.Anything, mock.Anything).
			Return(textResponse("no json here"), nil)

		_, err := newTestClassifier(client).ExtractInstitutions(context.Background(), "text")
		assert.Error(t, err)
	})
}

func TestClassifyInstitution(t *testing.T) {
	items := []model.EvidenceItem{{Title: "Acme State replaces ERP", Summary: "Board approves."}}

	t.Run("lead found", func(t *testing.T) {
		client := &mockAIClient{}
		client.On("CreateMessage", mock.Anything, mock.Anything).
			Return(textResponse(`{"found": true, "lead_type": "ERP", "opportunity_summary": "ERP replacement underway.", "confidence": 0.8}`), nil)

		got, err := newTestClassifier(client).ClassifyInstitution(context.Background(), "Acme State University", items)
		require.NoError(t, err)
		assert.True(t, got.Found)
		assert.Equal(t, model.LeadTypeERP, got.LeadType)
		assert.InDelta(t, 0.8, got.Confidence, 0.001)
	})

	t.Run("no lead verdict", func(t *testing.T) {
		client := &mockAIClient{}
		client.On("CreateMessage", mock.Anything, mock.Anything).
			Return(textResponse(`{"found": false, "reason": "routine campus news"}`), nil)

		got, err := newTestClassifier(client).ClassifyInstitution(context.Background(), "Acme State University", items)
		require.NoError(t, err)
		assert.False(t, got.Found)
	})

	t.Run("malformed response becomes no lead", func(t *testing.T) {
		client := &mockAIClient{}
		client.On("CreateMessage", mock.Anything, mock.Anything).
			Return(textResponse("I think this institution is promising!"), nil)

		got, err := newTestClassifier(client).ClassifyInstitution(context.Background(), "Acme State University", items)
		require.NoError(t, err)
		assert.False(t, got.Found)
	})

	t.Run("unrecognized lead type becomes no lead", func(t *testing.T) {
		client := &mockAIClient{}
		client.On("CreateMessage", mock.Anything, mock.Anything).
			Return(textResponse(`{"found": true, "lead_type": "Blockchain", "confidence": 0.9}`), nil)

		got, err := newTestClassifier(client).ClassifyInstitution(context.Background(), "Acme State University", items)
		require.NoError(t, err)
		assert.False(t, got.Found)
	})

	t.Run("signal type rejected for institution verdicts", func(t *testing.T) {
		client := &mockAIClient{}
		client.On("CreateMessage", mock.Anything, mock.Anything).
			Return(textResponse(`{"found": true, "lead_type": "Signal", "confidence": 0.9}`), nil)

		got, err := newTestClassifier(client).ClassifyInstitution(context.Background(), "Acme State University", items)
		require.NoError(t, err)
		assert.False(t, got.Found, "Signal is reserved for fallback records")
	})

	t.Run("confidence clamped to unit interval", func(t *testing.T) {
		client := &mockAIClient{}
		client.On("CreateMessage", mock.Anything, mock.Anything).
			Return(textResponse(`{"found": true, "lead_type": "ERP", "confidence": 1.7}`), nil)

		got, err := newTestClassifier(client).ClassifyInstitution(context.Background(), "Acme State University", items)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, got.Confidence, 0.001)
	})
}

func TestSummarizeSectorTrend(t *testing.T) {
	items := []model.EvidenceItem{{Title: "Cloud spending up across sector"}}

	t.Run("trend found", func(t *testing.T) {
		client := &mockAIClient{}
		client.On("CreateMessage", mock.Anything, mock.Anything).
			Return(textResponse(`{"found": true, "trend_summary": "Cloud budgets growing.", "confidence": 0.5}`), nil)

		got, err := newTestClassifier(client).SummarizeSectorTrend(context.Background(), items)
		require.NoError(t, err)
		assert.True(t, got.Found)
		assert.InDelta(t, 0.5, got.Confidence, 0.001)
	})

	t.Run("malformed response becomes no trend", func(t *testing.T) {
		client := &mockAIClient{}
		client.On("CreateMessage", mock.Anything, mock.Anything).
			Return(textResponse("trends are hard"), nil)

		got, err := newTestClassifier(client).SummarizeSectorTrend(context.Background(), items)
		require.NoError(t, err)
		assert.False(t, got.Found)
	})
}

func TestCleanJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"prose around object", `Sure! {"a": 1} Hope that helps.`, `{"a": 1}`},
		{"no object", "nothing here", "nothing here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanJSON(tt.in))
		})
	}
}
