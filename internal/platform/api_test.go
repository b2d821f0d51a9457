package platform

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kpn-dsh/dsh-cli-sub001/internal/descriptor"
	"github.com/kpn-dsh/dsh-cli-sub001/internal/model"
)

func TestAPIErrorIs(t *testing.T) {
	tests := []struct {
		err  error
		want error
		not  []error
	}{
		{err: NotFound("x"), want: ErrNotFound, not: []error{ErrNotAuthorized, ErrUnexpected}},
		{err: NotAuthorized(""), want: ErrNotAuthorized, not: []error{ErrNotFound, ErrUnexpected}},
		{err: Unexpected("boom"), want: ErrUnexpected, not: []error{ErrNotFound, ErrNotAuthorized}},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("call: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.want))
			for _, n := range tt.not {
				assert.False(t, errors.Is(wrapped, n))
			}
		})
	}
	assert.Equal(t, "not authorized", NotAuthorized("").Error())
	assert.Equal(t, "unexpected: boom", Unexpected("boom").Error())
}

func TestMemoryAPI(t *testing.T) {
	ctx := context.Background()
	api := NewMemoryAPI()
	app := &descriptor.Application{Image: "registry/greenbox:1"}

	_, err := api.AllocationStatus(ctx, model.KindService, "weather-greenbox")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, api.Create(ctx, "weather-greenbox", app))
	status, err := api.AllocationStatus(ctx, model.KindService, "weather-greenbox")
	require.NoError(t, err)
	assert.True(t, status.Provisioned)

	_, err = api.AllocationStatus(ctx, model.KindApp, "weather-greenbox")
	assert.ErrorIs(t, err, ErrNotFound)

	got, ok := api.Descriptor(model.KindService, "weather-greenbox")
	require.True(t, ok)
	assert.Same(t, app, got)
	assert.Equal(t, []string{"weather-greenbox"}, api.Names(model.KindService))
	assert.Empty(t, api.Names(model.KindApp))

	require.NoError(t, api.Delete(ctx, model.KindService, "weather-greenbox"))
	assert.ErrorIs(t, api.Delete(ctx, model.KindService, "weather-greenbox"), ErrNotFound)

	api.Err = NotAuthorized("")
	assert.ErrorIs(t, api.Create(ctx, "x", app), ErrNotAuthorized)
}

func TestMemoryAPINotProvisioned(t *testing.T) {
	ctx := context.Background()
	api := NewMemoryAPI()
	api.Provision = false
	require.NoError(t, api.Create(ctx, "x", &descriptor.AppCatalogApp{Name: "x"}))
	status, err := api.AllocationStatus(ctx, model.KindApp, "x")
	require.NoError(t, err)
	assert.False(t, status.Provisioned)
}
