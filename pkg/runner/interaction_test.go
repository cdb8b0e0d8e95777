package runner

import (
	"context"
	"io"
	"testing"

	"github.com/aretw0/turtle/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockIOHandler replays canned input and captures everything written.
type MockIOHandler struct {
	Inputs []string
	Out    []string
	System []string
}

func (m *MockIOHandler) Output(ctx context.Context, msg string) error {
	m.Out = append(m.Out, msg)
	return nil
}

func (m *MockIOHandler) Input(ctx context.Context) (string, error) {
	if len(m.Inputs) == 0 {
		return "", io.EOF
	}
	in := m.Inputs[0]
	m.Inputs = m.Inputs[1:]
	return in, nil
}

func (m *MockIOHandler) SystemOutput(ctx context.Context, msg string) error {
	m.System = append(m.System, msg)
	return nil
}

func TestTextInteraction_ConfirmUnsaved(t *testing.T) {
	tests := []struct {
		name   string
		inputs []string
		want   domain.Choice
	}{
		{"yes", []string{"y"}, domain.ChoiceSave},
		{"upper case", []string{" YES "}, domain.ChoiceSave},
		{"no", []string{"no"}, domain.ChoiceDiscard},
		{"empty cancels", []string{""}, domain.ChoiceCancel},
		{"retry until valid", []string{"maybe", "n"}, domain.ChoiceDiscard},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockIOHandler{Inputs: tt.inputs}
			got, err := NewTextInteraction(mock).ConfirmUnsaved(context.Background(), domain.ArtifactScript)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Contains(t, mock.System[0], PromptUnsavedScript)
		})
	}
}

func TestTextInteraction_ConfirmUnsaved_InputError(t *testing.T) {
	mock := &MockIOHandler{}
	got, err := NewTextInteraction(mock).ConfirmUnsaved(context.Background(), domain.ArtifactImage)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, domain.ChoiceCancel, got)
	assert.Contains(t, mock.System[0], PromptUnsavedImage)
}

func TestTextInteraction_Choosers(t *testing.T) {
	mock := &MockIOHandler{Inputs: []string{"  square ", ""}}
	ti := NewTextInteraction(mock)
	ctx := context.Background()

	name, ok, err := ti.ChooseDestination(ctx, domain.ArtifactScript)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "square", name)

	_, ok, err = ti.ChooseSource(ctx, domain.ArtifactImage)
	require.NoError(t, err)
	assert.False(t, ok, "an empty answer dismisses the chooser")

	assert.Equal(t, []string{"Save commands as (empty to cancel):", "Load image from (empty to cancel):"}, mock.System)
}

func TestStaticInteraction(t *testing.T) {
	ctx := context.Background()
	si := StaticInteraction{Choice: domain.ChoiceDiscard, Target: "out"}

	c, err := si.ConfirmUnsaved(ctx, domain.ArtifactImage)
	require.NoError(t, err)
	assert.Equal(t, domain.ChoiceDiscard, c)

	name, ok, _ := si.ChooseDestination(ctx, domain.ArtifactImage)
	assert.True(t, ok)
	assert.Equal(t, "out", name)

	_, ok, _ = si.ChooseSource(ctx, domain.ArtifactImage)
	assert.False(t, ok)
}
