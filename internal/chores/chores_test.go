package chores

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"testing"
	"time"

	"github.com/josephgoksu/chorepay/models"
	"github.com/josephgoksu/chorepay/store"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// july10 is the fixed clock used across the package tests.
var july10 = time.Date(2025, time.July, 10, 9, 30, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

type testEnv struct {
	fs     afero.Fs
	store  *store.FileTaskStore
	proofs *store.ProofStore
	svc    *Service
	now    time.Time
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	env := &testEnv{fs: afero.NewMemMapFs(), now: july10}

	env.store = store.NewFileTaskStoreWithFs(env.fs)
	env.store.RetryDelay = 0
	require.NoError(t, env.store.Initialize(map[string]string{"dataFile": "/data/tasks.json"}))
	env.proofs = store.NewProofStore(env.fs, "/data/uploads")

	if opts.Now == nil {
		opts.Now = func() time.Time { return env.now }
	}
	if opts.NewID == nil {
		opts.NewID = sequentialIDs()
	}
	env.svc = NewService(env.store, env.proofs, opts)
	return env
}

// seed writes tasks directly, bypassing the service.
func (e *testEnv) seed(t *testing.T, tasks ...models.Task) {
	t.Helper()
	snap, err := e.store.Load()
	require.NoError(t, err)
	snap.Tasks = append(snap.Tasks, tasks...)
	_, err = e.store.Save(snap)
	require.NoError(t, err)
}

func (e *testEnv) stored(t *testing.T) []models.Task {
	t.Helper()
	snap, err := e.store.Load()
	require.NoError(t, err)
	return snap.Tasks
}

func chore(id, name string, size models.TaskSize) models.Task {
	return models.Task{
		ID:        id,
		Name:      name,
		Size:      size,
		Month:     "2025-07",
		Recurring: models.RecurNone,
	}
}

func template(id, name string, rec models.Recurrence, due string) models.Task {
	t := chore(id, name, models.SizeSmall)
	t.Recurring = rec
	t.DueDate = due
	return t
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2)), nil))
	return buf.Bytes()
}

func dataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }
