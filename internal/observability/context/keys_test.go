package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActorDefaultsToSystem(t *testing.T) {
	actorType, actorID := ActorFromContext(context.Background())
	assert.Equal(t, ActorTypeSystem, actorType)
	assert.Empty(t, actorID)
}

func TestActorRoundTrip(t *testing.T) {
	ctx := WithActor(context.Background(), ActorTypeAdmin, "42")
	ctx = WithRequestID(ctx, "req-1")

	actorType, actorID := ActorFromContext(ctx)
	assert.Equal(t, ActorTypeAdmin, actorType)
	assert.Equal(t, "42", actorID)
	assert.Equal(t, "req-1", RequestIDFromContext(ctx))
}
