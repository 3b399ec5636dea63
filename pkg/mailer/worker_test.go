package mailer

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	err  error
	sent []string
	text string
}

func (s *recordingSender) Send(_ context.Context, to, subject, text, _ string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, to+"|"+subject)
	s.text = text
	return nil
}

func newWorker(s Sender) *Worker {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Worker{Sender: s, Logger: l}
}

func TestWorker_RendersTemplate(t *testing.T) {
	s := &recordingSender{}
	body := []byte(`{"to":"ann@x.io","template":"welcome","data":{"Name":"Ann","AppName":"TradeSync"}}`)

	assert.Equal(t, Ack, newWorker(s).Handle(context.Background(), body))
	require.Len(t, s.sent, 1)
	assert.Equal(t, "ann@x.io|Welcome to TradeSync, Ann", s.sent[0])
}

func TestWorker_RawMessage(t *testing.T) {
	s := &recordingSender{}
	body := []byte(`{"to":"ann@x.io","subject":"Hi","text":"hello"}`)

	assert.Equal(t, Ack, newWorker(s).Handle(context.Background(), body))
	assert.Equal(t, "hello", s.text)
}

func TestWorker_Outcomes(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
		want Outcome
	}{
		{"malformed json", `{`, nil, Drop},
		{"no recipient", `{"template":"welcome"}`, nil, Drop},
		{"unknown template", `{"to":"a@x.io","template":"nope"}`, nil, Drop},
		{"send failure", `{"to":"a@x.io","subject":"s","text":"t"}`, errors.New("mailgun down"), Requeue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newWorker(&recordingSender{err: tt.err}).Handle(context.Background(), []byte(tt.body))
			assert.Equal(t, tt.want, got)
		})
	}
}
