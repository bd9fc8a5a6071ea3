package wake

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspectListsModesWithoutApplying(t *testing.T) {
	platform := newFakePlatform(&fakeDisplay{target: specialTarget("1"), modes: kioskModes()})
	o := NewOrchestrator(platform, Options{})

	ins := o.Inspect(context.Background(), specialTarget("1"), false)
	require.NoError(t, ins.Err)
	assert.Len(t, ins.Modes, 3)
	require.NotNil(t, ins.Selected)
	assert.Equal(t, uint32(2), ins.Selected.ID)

	assert.Empty(t, platform.staged)
	assert.Empty(t, platform.applied)
	assert.Equal(t, []string{"1"}, platform.released)
	assert.Equal(t, []string{":0"}, platform.closed)
}

func TestInspectFailures(t *testing.T) {
	tests := []struct {
		name    string
		display *fakeDisplay
		want    Outcome
	}{
		{name: "device", display: &fakeDisplay{target: specialTarget("1"), failAt: OutcomeDeviceCreateFailed}, want: OutcomeDeviceCreateFailed},
		{name: "state", display: &fakeDisplay{target: specialTarget("1"), failAt: OutcomeStateAcquireFailed}, want: OutcomeStateAcquireFailed},
		{name: "connect", display: &fakeDisplay{target: specialTarget("1"), failAt: OutcomeConnectFailed}, want: OutcomeConnectFailed},
		{name: "query", display: &fakeDisplay{target: specialTarget("1"), failAt: OutcomeModeQueryFailed}, want: OutcomeModeQueryFailed},
		{name: "no modes", display: &fakeDisplay{target: specialTarget("1")}, want: OutcomeNoModesFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			platform := newFakePlatform(tt.display)
			ins := NewOrchestrator(platform, Options{}).Inspect(context.Background(), tt.display.target, true)

			var stageErr *StageError
			require.ErrorAs(t, ins.Err, &stageErr)
			assert.Equal(t, tt.want, stageErr.Outcome)
			assert.Nil(t, ins.Selected)
		})
	}
}
