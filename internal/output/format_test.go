package output_test

import (
	"bytes"
	"testing"

	"todo/internal/controller"
	"todo/internal/output"
	"todo/internal/service"
	"todo/internal/testutil"
)

func TestFormatTask(t *testing.T) {
	tests := []struct {
		name string
		num  int
		task service.Task
		want string
	}{
		{"open", 1, service.Task{Title: "Buy milk"}, "   1  [ ] Buy milk\n"},
		{"done", 12, service.Task{Title: "Buy eggs", IsCompleted: true}, "  12  [x] Buy eggs\n"},
		{"untitled", 3, service.Task{Title: "  "}, "   3  [ ] (untitled)\n"},
		{"newline", 4, service.Task{Title: "a\nb"}, "   4  [ ] a b\n"},
		{"description", 5, service.Task{Title: "Call", Description: "mom\n"}, "   5  [ ] Call\n          mom\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			output.FormatTask(&buf, tt.num, tt.task)
			if buf.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, buf.String())
			}
		})
	}
}

func TestTaskNumber(t *testing.T) {
	if n := output.TaskNumber(1, 0); n != 1 {
		t.Errorf("expected 1, got %d", n)
	}
	if n := output.TaskNumber(3, 4); n != 25 {
		t.Errorf("expected 25, got %d", n)
	}
}

func TestFormatPage_SecondPagePending(t *testing.T) {
	st := controller.State{
		Filter:     service.FilterPending,
		Page:       2,
		TotalCount: 12,
		TotalPages: 2,
		Tasks: []service.Task{
			{ID: 2, Title: "Water plants", Description: "balcony too"},
			{ID: 1, Title: "Pay rent"},
		},
	}

	var buf bytes.Buffer
	output.FormatPage(&buf, st, false)
	testutil.Golden(t, "page_pending_2", buf.Bytes())
}

func TestFormatPage_Empty(t *testing.T) {
	st := controller.State{Filter: service.FilterAll, Page: 1, TotalPages: 1}

	var buf bytes.Buffer
	output.FormatPage(&buf, st, false)
	if buf.String() != "no tasks found\n" {
		t.Errorf("expected %q, got %q", "no tasks found\n", buf.String())
	}

	buf.Reset()
	output.FormatPage(&buf, st, true)
	if buf.String() != "" {
		t.Errorf("expected empty output in quiet mode, got %q", buf.String())
	}
}

func TestFormatStatus(t *testing.T) {
	var buf bytes.Buffer
	output.FormatStatus(&buf, controller.Status{Kind: controller.StatusError, Text: "error 500: boom\n"})
	output.FormatStatus(&buf, controller.Status{Kind: controller.StatusInfo, Text: "Task created."})

	want := "error: error 500: boom\ninfo: Task created.\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}
