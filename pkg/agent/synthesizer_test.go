package agent

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestSynthesizerStreamsDeltas(t *testing.T) {
	provider := &fakeLLM{streamDeltas: []string{"연차는 ", "3일 남았습니다."}}
	s := NewSynthesizer(provider, discardLogger())

	var got []string
	err := s.Stream(context.Background(), SynthesisInput{Question: "연차?"}, func(chunk string) error {
		got = append(got, chunk)
		return nil
	})

	if err != nil {
		t.Fatalf("Stream returned %v", err)
	}
	if !reflect.DeepEqual(got, []string{"연차는 ", "3일 남았습니다."}) {
		t.Errorf("chunks = %v", got)
	}
	if provider.chatCalls != 0 {
		t.Errorf("non-streaming Chat called %d times, want 0", provider.chatCalls)
	}
}

func TestSynthesizerFallsBackWhenStreamNeverStarts(t *testing.T) {
	provider := &fakeLLM{
		streamErr:    errors.New("streaming unsupported"),
		chatResponse: "첫 문단입니다.\n\n둘째 문단입니다.",
	}
	s := NewSynthesizer(provider, discardLogger())

	var got []string
	err := s.Stream(context.Background(), SynthesisInput{Question: "규정?"}, func(chunk string) error {
		got = append(got, chunk)
		return nil
	})

	if err != nil {
		t.Fatalf("Stream returned %v", err)
	}
	want := []string{"첫 문단입니다.\n", "둘째 문단입니다.\n"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("chunks = %v, want %v", got, want)
	}
	if provider.chatCalls != 1 {
		t.Errorf("non-streaming Chat called %d times, want 1", provider.chatCalls)
	}
}

func TestSynthesizerMidStreamErrorIsNotRetried(t *testing.T) {
	streamErr := errors.New("connection reset")
	provider := &fakeLLM{
		streamDeltas: []string{"부분 답변"},
		streamErr:    streamErr,
		chatResponse: "절대 보이면 안 되는 답",
	}
	s := NewSynthesizer(provider, discardLogger())

	var got []string
	err := s.Stream(context.Background(), SynthesisInput{}, func(chunk string) error {
		got = append(got, chunk)
		return nil
	})

	if !errors.Is(err, streamErr) {
		t.Fatalf("err = %v, want %v", err, streamErr)
	}
	if provider.chatCalls != 0 {
		t.Errorf("fallback ran after a delta was emitted, Chat calls = %d", provider.chatCalls)
	}
	if len(got) != 1 {
		t.Errorf("chunks = %v, want one partial chunk", got)
	}
}

func TestSynthesizerEmitErrorAborts(t *testing.T) {
	emitErr := errors.New("callback endpoint gone")
	provider := &fakeLLM{streamDeltas: []string{"a", "b"}}
	s := NewSynthesizer(provider, discardLogger())

	err := s.Stream(context.Background(), SynthesisInput{}, func(string) error {
		return emitErr
	})

	if !errors.Is(err, emitErr) {
		t.Fatalf("err = %v, want %v", err, emitErr)
	}
	if provider.chatCalls != 0 {
		t.Error("fallback must not run when the caller refused a chunk")
	}
}

func TestSplitParagraphs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "two paragraphs",
			in:   "하나\n\n둘",
			want: []string{"하나\n", "둘\n"},
		},
		{
			name: "extra blank lines dropped",
			in:   "하나\n\n\n\n둘\n\n",
			want: []string{"하나\n", "둘\n"},
		},
		{
			name: "single block",
			in:   "한 덩어리",
			want: []string{"한 덩어리\n"},
		},
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitParagraphs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitParagraphs(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
