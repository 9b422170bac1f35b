package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/rotbot/rotbot-api/internal/app/service/decaylog"
	"github.com/rotbot/rotbot-api/internal/app/service/personality"
	"github.com/rotbot/rotbot-api/internal/models"
	"github.com/rotbot/rotbot-api/pkg/response"
	"github.com/rotbot/rotbot-api/pkg/types"
)

type fakeEntitlements struct{}

func (fakeEntitlements) GetEntitledByUser(_ context.Context, userID string) (*types.UserSubscriptionInfo, error) {
	if userID == "u1" {
		return &types.UserSubscriptionInfo{Entitled: true, Status: types.SubscriptionStatusActive}, nil
	}
	return &types.UserSubscriptionInfo{}, nil
}

type fakePersonalities struct {
	listedFor string
}

func (f *fakePersonalities) List(_ context.Context, userID string) ([]*personality.View, error) {
	f.listedFor = userID
	return []*personality.View{{Personality: &models.Personality{ID: "p1", Name: "RotBot"}}}, nil
}

func (f *fakePersonalities) Select(_ context.Context, _ string, id string) (*models.Personality, error) {
	switch id {
	case "p1":
		return &models.Personality{ID: "p1", Name: "RotBot", SystemMessage: "secret prompt"}, nil
	case "p2":
		return nil, personality.ErrPremiumRequired
	}
	return nil, personality.ErrPersonalityNotFound
}

type fakeDecay struct {
	entries []*models.DecayLogEntry
}

func (f *fakeDecay) Create(_ context.Context, userID, mood, note string) (*models.DecayLogEntry, error) {
	if !lo.Contains(decaylog.Moods, mood) {
		return nil, decaylog.ErrInvalidMood
	}
	e := &models.DecayLogEntry{ID: int64(len(f.entries) + 1), UserID: userID, Mood: mood, Note: note}
	f.entries = append(f.entries, e)
	return e, nil
}

func (f *fakeDecay) List(context.Context, string) ([]*models.DecayLogEntry, error) {
	return lo.Reverse(append([]*models.DecayLogEntry(nil), f.entries...)), nil
}

func (f *fakeDecay) Latest(context.Context, string) (*models.DecayLogEntry, error) {
	if len(f.entries) == 0 {
		return nil, nil
	}
	return f.entries[len(f.entries)-1], nil
}

func (f *fakeDecay) Remark(_ context.Context, _ string, id int64) (string, error) {
	if id > int64(len(f.entries)) {
		return "", decaylog.ErrEntryNotFound
	}
	return "Joy? Mark the calendar.", nil
}

func newMeRouter(p *fakePersonalities, d *fakeDecay) http.Handler {
	r := newTestRouter()
	auth := newTestAuth()
	v1 := r.Group("/api/v1")
	RegisterPersonalityRoutes(v1, auth, p)
	RegisterMeRoutes(v1.Group("/me", auth.RequireAuth()), fakeEntitlements{}, p, d)
	return r
}

func TestMySubscription(t *testing.T) {
	r := newMeRouter(&fakePersonalities{}, &fakeDecay{})
	e := decodeEnvelope(t, doJSON(t, r, http.MethodGet, "/api/v1/me/subscription", nil, map[string]string{"Authorization": bearer(t, "u1")}))
	require.JSONEq(t, `{"entitled":true,"status":"active"}`, string(e.Data))

	w := doJSON(t, r, http.MethodGet, "/api/v1/me/subscription", nil, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPersonalities(t *testing.T) {
	p := &fakePersonalities{}
	r := newMeRouter(p, &fakeDecay{})

	decodeEnvelope(t, doJSON(t, r, http.MethodGet, "/api/v1/personalities", nil, nil))
	require.Equal(t, "", p.listedFor)
	decodeEnvelope(t, doJSON(t, r, http.MethodGet, "/api/v1/personalities", nil, map[string]string{"Authorization": bearer(t, "u1")}))
	require.Equal(t, "u1", p.listedFor)

	auth := map[string]string{"Authorization": bearer(t, "u1")}
	e := decodeEnvelope(t, doJSON(t, r, http.MethodPost, "/api/v1/me/personality", map[string]string{"personality_id": "p1"}, auth))
	require.Equal(t, int(response.APIResponseCodeOK), e.Code)
	require.NotContains(t, string(e.Data), "secret prompt")

	e = decodeEnvelope(t, doJSON(t, r, http.MethodPost, "/api/v1/me/personality", map[string]string{"personality_id": "p2"}, auth))
	require.Equal(t, int(response.APIResponseCodeForbidden), e.Code)
	e = decodeEnvelope(t, doJSON(t, r, http.MethodPost, "/api/v1/me/personality", map[string]string{"personality_id": "nope"}, auth))
	require.Equal(t, int(response.APIResponseCodeNotFound), e.Code)
}

func TestDecayLog(t *testing.T) {
	d := &fakeDecay{}
	r := newMeRouter(&fakePersonalities{}, d)
	auth := map[string]string{"Authorization": bearer(t, "u1")}

	e := decodeEnvelope(t, doJSON(t, r, http.MethodGet, "/api/v1/me/decay_log/latest", nil, auth))
	require.JSONEq(t, `{"entry":null}`, string(e.Data))

	e = decodeEnvelope(t, doJSON(t, r, http.MethodPost, "/api/v1/me/decay_log", map[string]string{"mood": "elated"}, auth))
	require.Equal(t, int(response.APIResponseCodeBadRequest), e.Code)
	e = decodeEnvelope(t, doJSON(t, r, http.MethodPost, "/api/v1/me/decay_log", map[string]string{}, auth))
	require.Equal(t, int(response.APIResponseCodeBadRequest), e.Code)

	e = decodeEnvelope(t, doJSON(t, r, http.MethodPost, "/api/v1/me/decay_log", map[string]string{"mood": "joy", "note": "sun"}, auth))
	require.Equal(t, int(response.APIResponseCodeOK), e.Code)
	require.JSONEq(t, `{"id":1,"mood":"joy","note":"sun","created_at":"0001-01-01T00:00:00Z"}`, string(e.Data))

	e = decodeEnvelope(t, doJSON(t, r, http.MethodGet, "/api/v1/me/decay_log/1/remark", nil, auth))
	var remark RemarkResponse
	require.NoError(t, json.Unmarshal(e.Data, &remark))
	require.Equal(t, RemarkResponse{EntryID: 1, Remark: "Joy? Mark the calendar."}, remark)

	e = decodeEnvelope(t, doJSON(t, r, http.MethodGet, "/api/v1/me/decay_log/9/remark", nil, auth))
	require.Equal(t, int(response.APIResponseCodeNotFound), e.Code)
	e = decodeEnvelope(t, doJSON(t, r, http.MethodGet, "/api/v1/me/decay_log/abc/remark", nil, auth))
	require.Equal(t, int(response.APIResponseCodeBadRequest), e.Code)

	e = decodeEnvelope(t, doJSON(t, r, http.MethodGet, "/api/v1/me/decay_log/latest", nil, auth))
	var latest LatestDecayResponse
	require.NoError(t, json.Unmarshal(e.Data, &latest))
	require.Equal(t, "joy", latest.Entry.Mood)
	require.Equal(t, "Joy? Mark the calendar.", latest.Remark)

	e = decodeEnvelope(t, doJSON(t, r, http.MethodGet, "/api/v1/me/decay_log", nil, auth))
	require.Contains(t, string(e.Data), `"mood":"joy"`)
}
