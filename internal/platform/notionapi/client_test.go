package notionapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/almanac/internal/domain"
	"github.com/phrazzld/almanac/internal/remote"
)

func TestCreateMirror(t *testing.T) {
	t.Parallel()

	localID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/collections/habit/rows", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body row
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Meditate", body.Name)
		assert.Equal(t, localID.String(), body.LocalID)
		assert.Equal(t, "daily", body.Period)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(row{ID: "rem-42", Name: body.Name})
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", time.Second, nil)
	id, err := client.CreateMirror(context.Background(), remote.Mirror{
		Kind:    domain.KindHabit,
		LocalID: localID,
		Name:    "Meditate",
		Period:  "daily",
	})
	require.NoError(t, err)
	assert.Equal(t, "rem-42", id)
}

func TestFindMirrorNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", time.Second, nil)
	_, err := client.FindMirror(context.Background(), domain.KindHabit, "gone")
	assert.ErrorIs(t, err, remote.ErrMirrorNotFound)
}

func TestServerErrorsMapToRemoteUnavailable(t *testing.T) {
	t.Parallel()

	for _, status := range []int{http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		client := NewClient(server.URL, "secret", time.Second, nil)
		_, err := client.FindMirror(context.Background(), domain.KindHabit, "x")
		assert.ErrorIs(t, err, remote.ErrRemoteUnavailable, "status %d", status)
		server.Close()
	}
}

func TestTransportErrorMapsToRemoteUnavailable(t *testing.T) {
	t.Parallel()

	// Nothing listens on this address.
	client := NewClient("http://127.0.0.1:1", "secret", time.Second, nil)
	_, err := client.ListMirrors(context.Background(), domain.KindHabit)
	assert.ErrorIs(t, err, remote.ErrRemoteUnavailable)
}

func TestArchiveMirrorTreatsMissingAsArchived(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/collections/inbox_task/rows/rem-1/archive", r.URL.Path)
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", time.Second, nil)
	err := client.ArchiveMirror(context.Background(), domain.KindInboxTask, "rem-1")
	assert.NoError(t, err)
}

func TestListMirrorsFollowsCursors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("cursor") {
		case "":
			_ = json.NewEncoder(w).Encode(listResponse{
				Rows:       []row{{ID: "rem-1", Name: "first"}},
				NextCursor: "page2",
			})
		case "page2":
			_ = json.NewEncoder(w).Encode(listResponse{
				Rows: []row{{ID: "rem-2", Name: "second", LocalID: "not-a-uuid"}},
			})
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("cursor"))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", time.Second, nil)
	mirrors, err := client.ListMirrors(context.Background(), domain.KindProject)
	require.NoError(t, err)
	require.Len(t, mirrors, 2)
	assert.Equal(t, "rem-1", mirrors[0].RemoteID)
	assert.Equal(t, "rem-2", mirrors[1].RemoteID)
	assert.Equal(t, uuid.Nil, mirrors[1].LocalID, "an unparseable local id stamp is ignored")
}

func TestUpdateMirrorSendsPatch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/v1/collections/vacation/rows/rem-7", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, "secret", time.Second, nil)
	err := client.UpdateMirror(context.Background(), "rem-7", remote.Mirror{
		Kind: domain.KindVacation,
		Name: "trip",
	})
	assert.NoError(t, err)
}
