package task

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		input   string
		want    Category
		wantErr bool
	}{
		{input: "", want: CategoryOther},
		{input: "  ", want: CategoryOther},
		{input: "School", want: CategorySchool},
		{input: "work", want: CategoryWork},
		{input: "PERSONAL", want: CategoryPersonal},
		{input: " other ", want: CategoryOther},
		{input: "Groceries", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTask_IsOverdue(t *testing.T) {
	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	tests := []struct {
		name string
		task Task
		want bool
	}{
		{name: "no due date", task: Task{}, want: false},
		{name: "due tomorrow", task: Task{DueDate: &tomorrow}, want: false},
		{name: "due yesterday", task: Task{DueDate: &yesterday}, want: true},
		{name: "due exactly now", task: Task{DueDate: &now}, want: false},
		// Completion does not suppress the overdue flag.
		{name: "due yesterday and completed", task: Task{DueDate: &yesterday, IsCompleted: true}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.task.IsOverdue(now))
		})
	}
}

func TestTask_HasDescription(t *testing.T) {
	empty := ""
	text := "details"

	assert.False(t, Task{}.HasDescription())
	assert.False(t, Task{Description: &empty}.HasDescription())
	assert.True(t, Task{Description: &text}.HasDescription())
}

func TestTask_JSONKeepsAbsentAndEmptyApart(t *testing.T) {
	empty := ""
	absent, err := json.Marshal(Task{ID: 1, Title: "a", Category: CategoryOther})
	require.NoError(t, err)
	assert.Contains(t, string(absent), `"description":null`)
	assert.Contains(t, string(absent), `"due_date":null`)

	blank, err := json.Marshal(Task{ID: 1, Title: "a", Category: CategoryOther, Description: &empty})
	require.NoError(t, err)
	assert.Contains(t, string(blank), `"description":""`)

	var decoded Task
	require.NoError(t, json.Unmarshal(blank, &decoded))
	require.NotNil(t, decoded.Description)
	assert.Equal(t, "", *decoded.Description)
}

func TestFields_Validate(t *testing.T) {
	assert.NoError(t, Fields{Title: "ok"}.Validate())
	assert.NoError(t, Fields{Title: " "}.Validate())
	assert.ErrorIs(t, Fields{}.Validate(), ErrValidation)
	assert.ErrorIs(t, Fields{Title: "ok", Category: "nope"}.Validate(), ErrValidation)
}
