//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/flotech/flotech/internal/model"
	"github.com/flotech/flotech/internal/testutil"
)

func TestIntegrationMeetingRepository_UpsertAndList(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("meetings"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	meetings := []*model.Meeting{
		testutil.NewTestMeeting(t, user.ID, "t1"),
		testutil.NewTestMeeting(t, user.ID, "t2"),
	}
	if err := repo.UpsertMeetings(ctx, meetings); err != nil {
		t.Fatalf("UpsertMeetings failed: %v", err)
	}

	listed, err := repo.ListMeetingsByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListMeetingsByUser failed: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 meetings, got %d", len(listed))
	}
}

func TestIntegrationMeetingRepository_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("idem"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	first := testutil.NewTestMeeting(t, user.ID, "t1")
	first.Title = "Standup"
	first.Date = "2024-05-01"
	if err := repo.UpsertMeetings(ctx, []*model.Meeting{first}); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	// Second delivery of the same transcript: same content, later
	// ingestion time.
	second := testutil.NewTestMeeting(t, user.ID, "t1")
	second.Title = "Standup"
	second.Date = "2024-05-01"
	second.CreatedAt = first.CreatedAt.Add(time.Minute)
	second.UpdatedAt = first.UpdatedAt.Add(time.Minute)
	if err := repo.UpsertMeetings(ctx, []*model.Meeting{second}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	got, err := repo.GetMeeting(ctx, user.ID, "t1")
	if err != nil {
		t.Fatalf("GetMeeting failed: %v", err)
	}
	if got.Title != "Standup" || got.Date != "2024-05-01" || got.Duration != model.DurationUnknown {
		t.Errorf("content changed on re-delivery: %+v", got)
	}
	if !got.UpdatedAt.After(first.UpdatedAt) {
		t.Errorf("expected UpdatedAt to advance, got %v", got.UpdatedAt)
	}

	listed, err := repo.ListMeetingsByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("ListMeetingsByUser failed: %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("expected 1 meeting after re-delivery, got %d", len(listed))
	}
}

func TestIntegrationMeetingRepository_OwnershipIsolation(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	owner := testutil.NewTestUser(t, testutil.UniqueEmail("owner"))
	other := testutil.NewTestUser(t, testutil.UniqueEmail("other"))
	for _, u := range []*model.User{owner, other} {
		if err := repo.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser failed: %v", err)
		}
	}

	if err := repo.UpsertMeetings(ctx, []*model.Meeting{testutil.NewTestMeeting(t, owner.ID, "t1")}); err != nil {
		t.Fatalf("UpsertMeetings failed: %v", err)
	}

	listed, err := repo.ListMeetingsByUser(ctx, other.ID)
	if err != nil {
		t.Fatalf("ListMeetingsByUser failed: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("expected no meetings for other user, got %d", len(listed))
	}
}

func TestIntegrationIngestionRepository_CreateAndList(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("audit"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	ing := &model.Ingestion{
		ID:         testutil.UniqueID("ing"),
		UserID:     user.ID,
		MeetingIDs: []string{"t1", "t2"},
		ReceivedAt: time.Now().UTC(),
	}
	if err := repo.CreateIngestion(ctx, ing); err != nil {
		t.Fatalf("CreateIngestion failed: %v", err)
	}

	listed, err := repo.ListIngestionsByUser(ctx, user.ID, 10)
	if err != nil {
		t.Fatalf("ListIngestionsByUser failed: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected 1 ingestion, got %d", len(listed))
	}
	if len(listed[0].MeetingIDs) != 2 {
		t.Errorf("expected 2 meeting IDs, got %v", listed[0].MeetingIDs)
	}
}
