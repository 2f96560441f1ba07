package firebase

import (
	"context"
	"testing"

	"github.com/GoSim-25-26J-441/lock-sweeper/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientOptions_EmulatorRequiresProject(t *testing.T) {
	t.Setenv("FIRESTORE_EMULATOR_HOST", "localhost:8081")

	_, err := clientOptions(context.Background(), &config.FirebaseConfig{})
	assert.Error(t, err)

	opts, err := clientOptions(context.Background(), &config.FirebaseConfig{ProjectID: "demo-sweeper"})
	require.NoError(t, err)
	assert.Len(t, opts, 1)
}

func TestClientOptions_CredentialsFile(t *testing.T) {
	t.Setenv("FIRESTORE_EMULATOR_HOST", "")

	opts, err := clientOptions(context.Background(), &config.FirebaseConfig{CredentialsPath: "service-account.json"})
	require.NoError(t, err)
	assert.Len(t, opts, 1)
}

func TestNewFirestore_Emulator(t *testing.T) {
	t.Setenv("FIRESTORE_EMULATOR_HOST", "localhost:8081")

	// the client connects lazily, so no emulator needs to be listening
	client, err := NewFirestore(context.Background(), &config.FirebaseConfig{ProjectID: "demo-sweeper"})
	require.NoError(t, err)
	assert.NotNil(t, client)
	_ = client.Close()
}
