package mcp

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestMouseMove(t *testing.T) {
	tests := []struct {
		name     string
		input    MouseMoveInput
		want     string
		wantCall string
	}{
		{
			name:     "absolute",
			input:    MouseMoveInput{X: 100, Y: 200},
			want:     "Moved mouse to (100, 200)",
			wantCall: "mouse_move (100,200) relative=false",
		},
		{
			name:     "relative",
			input:    MouseMoveInput{X: -10, Y: 5, Relative: true},
			want:     "Moved mouse by (-10, 5)",
			wantCall: "mouse_move (-10,5) relative=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := &fakeController{}
			s := newTestServer(t, fc, nil, "")

			result, _, err := s.MouseMove(context.Background(), nil, tt.input)
			if err != nil {
				t.Fatalf("MouseMove returned error: %v", err)
			}
			if got := resultText(t, result); got != tt.want {
				t.Errorf("result = %q, want %q", got, tt.want)
			}
			if len(fc.calls) != 1 || fc.calls[0] != tt.wantCall {
				t.Errorf("calls = %v, want [%s]", fc.calls, tt.wantCall)
			}
		})
	}
}

func TestMouseClick_Defaults(t *testing.T) {
	fc := &fakeController{}
	s := newTestServer(t, fc, nil, "")

	result, _, err := s.MouseClick(context.Background(), nil, MouseClickInput{})
	if err != nil {
		t.Fatalf("MouseClick returned error: %v", err)
	}
	if got := resultText(t, result); got != "Clicked left" {
		t.Errorf("result = %q", got)
	}
}

func TestMouseClick_AtPosition(t *testing.T) {
	fc := &fakeController{}
	s := newTestServer(t, fc, nil, "")

	x, y := 640, 480
	result, _, err := s.MouseClick(context.Background(), nil, MouseClickInput{Button: "right", X: &x, Y: &y})
	if err != nil {
		t.Fatalf("MouseClick returned error: %v", err)
	}
	if got := resultText(t, result); got != "Clicked right at (640, 480)" {
		t.Errorf("result = %q", got)
	}
	if fc.calls[0] != "mouse_click right (640,480)" {
		t.Errorf("calls = %v", fc.calls)
	}
}

func TestMouseClick_InvalidButton(t *testing.T) {
	fc := &fakeController{}
	s := newTestServer(t, fc, nil, "")

	result, _, err := s.MouseClick(context.Background(), nil, MouseClickInput{Button: "side"})
	if err != nil {
		t.Fatalf("MouseClick returned error: %v", err)
	}
	if !result.IsError {
		t.Error("invalid button should produce an error result")
	}
	if len(fc.calls) != 0 {
		t.Errorf("no remote call for invalid input, got %v", fc.calls)
	}
}

// TestMouseDrag_Sequence pins the drag contract: exactly four remote
// steps in order, with a settle delay between each hardware transition.
func TestMouseDrag_Sequence(t *testing.T) {
	fc := &fakeController{}
	s := newTestServer(t, fc, nil, "")

	result, _, err := s.MouseDrag(context.Background(), nil, MouseDragInput{
		StartX: 10, StartY: 20, EndX: 300, EndY: 400,
	})
	if err != nil {
		t.Fatalf("MouseDrag returned error: %v", err)
	}
	if got := resultText(t, result); got != "Dragged left from (10, 20) to (300, 400)" {
		t.Errorf("result = %q", got)
	}

	want := []string{
		"mouse_down left (10,20)",
		"sleep 50ms",
		"mouse_move (300,400) relative=false",
		"sleep 50ms",
		"mouse_up left (300,400)",
	}
	if !reflect.DeepEqual(fc.calls, want) {
		t.Errorf("call order = %v, want %v", fc.calls, want)
	}
}

func TestMouseDrag_Button(t *testing.T) {
	fc := &fakeController{}
	s := newTestServer(t, fc, nil, "")

	_, _, err := s.MouseDrag(context.Background(), nil, MouseDragInput{
		StartX: 1, StartY: 2, EndX: 3, EndY: 4, Button: "middle",
	})
	if err != nil {
		t.Fatalf("MouseDrag returned error: %v", err)
	}

	if fc.calls[0] != "mouse_down middle (1,2)" || fc.calls[4] != "mouse_up middle (3,4)" {
		t.Errorf("calls = %v", fc.calls)
	}
}

func TestMouseDrag_DownFailureStopsSequence(t *testing.T) {
	fc := &fakeController{errs: map[string]error{"mouse_down": errors.New("serial gone")}}
	s := newTestServer(t, fc, nil, "")

	result, _, err := s.MouseDrag(context.Background(), nil, MouseDragInput{
		StartX: 1, StartY: 2, EndX: 3, EndY: 4,
	})
	if err != nil {
		t.Fatalf("MouseDrag returned error: %v", err)
	}
	if !result.IsError {
		t.Error("failed drag should produce error result")
	}
	if len(fc.calls) != 1 {
		t.Errorf("sequence should stop at the failed step, calls = %v", fc.calls)
	}
}

func TestMouseScroll(t *testing.T) {
	tests := []struct {
		amount int
		want   string
	}{
		{3, "Scrolled up by 3"},
		{-5, "Scrolled down by 5"},
	}

	for _, tt := range tests {
		fc := &fakeController{}
		s := newTestServer(t, fc, nil, "")

		result, _, err := s.MouseScroll(context.Background(), nil, MouseScrollInput{Amount: tt.amount})
		if err != nil {
			t.Fatalf("MouseScroll returned error: %v", err)
		}
		if got := resultText(t, result); got != tt.want {
			t.Errorf("result = %q, want %q", got, tt.want)
		}
	}
}
