package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"seds-backend/application/ports"
	pkgerrors "seds-backend/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pending(id, by string, expires time.Time) ports.PendingConfirmation {
	return ports.PendingConfirmation{ID: id, Action: "set_user_active", RequestedBy: by, Payload: `{"userId":"7"}`, ExpiresAt: expires.Unix()}
}

func TestConfirmationStoreClaim(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2021, 4, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		stored   ports.PendingConfirmation
		claimBy  string
		wantErr  error
		wantLeft int
	}{
		{"requester claims", pending("c1", "sub-admin", now.Add(time.Minute)), "sub-admin", nil, 0},
		{"other user", pending("c1", "sub-admin", now.Add(time.Minute)), "sub-other", pkgerrors.ErrUserNotAuthorized, 1},
		{"expired", pending("c1", "sub-admin", now.Add(-time.Second)), "sub-admin", pkgerrors.ErrConfirmationNotFound, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewConfirmationStore()
			require.NoError(t, store.Put(ctx, tt.stored))

			got, err := store.Claim(ctx, "c1", tt.claimBy, now)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.stored, *got)
			}
			assert.Equal(t, tt.wantLeft, store.Len())
		})
	}

	t.Run("missing", func(t *testing.T) {
		_, err := NewConfirmationStore().Claim(ctx, "nope", "sub-admin", now)
		assert.ErrorIs(t, err, pkgerrors.ErrConfirmationNotFound)
	})
}

func TestConfirmationStoreClaimOnce(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	store := NewConfirmationStore()
	require.NoError(t, store.Put(ctx, pending("c1", "sub-admin", now.Add(time.Minute))))

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		claimed int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Claim(ctx, "c1", "sub-admin", now); err == nil {
				mu.Lock()
				claimed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, claimed)
}
