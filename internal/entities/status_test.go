package entities_test

import (
	"testing"

	"github.com/plajta/depo-service/internal/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFromScanCode(t *testing.T) {
	testCases := []struct {
		name    string
		code    int
		want    entities.Status
		wantErr bool
	}{
		{name: "warehouse", code: entities.ScanCodeWarehouse, want: entities.StatusProcessing},
		{name: "transit", code: entities.ScanCodeTransit, want: entities.StatusShipped},
		{name: "delivered", code: entities.ScanCodeDelivered, want: entities.StatusDelivered},
		{name: "unknown", code: 7, wantErr: true},
		{name: "negative", code: -1, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := entities.StatusFromScanCode(tc.code)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []entities.Status{
		entities.StatusPending,
		entities.StatusProcessing,
		entities.StatusShipped,
		entities.StatusDelivered,
		entities.StatusCancelled,
	} {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, entities.Status("in_warehouse").Valid())
	assert.False(t, entities.Status("").Valid())
}
