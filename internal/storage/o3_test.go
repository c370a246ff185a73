package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akave-ai/hltmenu/internal/config"
	"github.com/akave-ai/hltmenu/internal/menu/hlt75e33"
	"github.com/akave-ai/hltmenu/internal/pset"
)

func TestKeyForModule(t *testing.T) {
	mod := hlt75e33.HltEle26WP70GsfTrackIsoUnseededFilter()
	key := KeyForModule(hlt75e33.MenuName, mod)
	assert.Equal(t, "menus/HLT_75e33/hltEle26WP70GsfTrackIsoUnseededFilter/"+mod.ID()+"_cfi.py", key)

	assert.True(t, strings.HasPrefix(KeyForModule("", mod), "menus/default/"))
}

func TestNewO3ClientUnconfigured(t *testing.T) {
	c, err := NewO3Client(nil)
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = NewO3Client(&config.O3Config{Endpoint: "http://localhost:9000"})
	require.NoError(t, err)
	assert.Nil(t, c)

	// a nil client is a no-op for listing and bucket setup
	require.NoError(t, c.EnsureBucket(context.Background()))
	list, err := c.ListObjects(context.Background(), "menus/")
	require.NoError(t, err)
	assert.Nil(t, list)
}

// objectServer is a minimal path-style S3 endpoint supporting PUT and GET.
type objectServer struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *objectServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch r.Method {
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.objects[r.URL.Path] = data
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := s.objects[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(data)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func TestPublishAndGetModule(t *testing.T) {
	backend := &objectServer{objects: make(map[string][]byte)}
	srv := httptest.NewServer(backend)
	defer srv.Close()

	c, err := NewO3Client(&config.O3Config{
		Endpoint:  srv.URL,
		Bucket:    "hltmenu",
		AccessKey: "test",
		SecretKey: "test",
	})
	require.NoError(t, err)
	require.NotNil(t, c)

	ctx := context.Background()
	mod := hlt75e33.HltEle26WP70GsfTrackIsoUnseededFilter()
	key, err := c.PublishModule(ctx, hlt75e33.MenuName, mod)
	require.NoError(t, err)
	assert.Equal(t, KeyForModule(hlt75e33.MenuName, mod), key)

	stored, ok := backend.objects["/hltmenu/"+key]
	require.True(t, ok)
	assert.Equal(t, mod.Serialize(), stored)

	got, err := c.GetModule(ctx, key)
	require.NoError(t, err)
	assert.True(t, got.Equal(mod))

	// content stored under a foreign digest is rejected
	other := pset.NewModule(pset.EDProducer, "Producer", mod.Label())
	backend.objects["/hltmenu/"+key] = other.Serialize()
	_, err = c.GetModule(ctx, key)
	require.Error(t, err)
}
