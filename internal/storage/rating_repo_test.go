package storage

import (
	"context"
	"errors"
	"math"
	"testing"
)

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestNewRatingRepo_UnknownKindPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewRatingRepo() with unknown kind should panic")
		}
	}()
	NewRatingRepo(nil, Kind("planet"))
}

func TestRatingRepo_Apply(t *testing.T) {
	for _, kind := range []Kind{KindEpisode, KindCharacter} {
		t.Run(string(kind), func(t *testing.T) {
			db := newTestDB(t)
			repo := NewRatingRepo(db, kind)
			ctx := context.Background()
			u := createUser(t, db, "morty")

			if _, err := repo.Get(ctx, u.ID, 7); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get() before create error = %v, want ErrNotFound", err)
			}

			r, created, err := repo.Apply(ctx, u.ID, 7, RatingUpdate{SetRating: true, Rating: intPtr(4)})
			if err != nil {
				t.Fatalf("Apply() create error = %v", err)
			}
			if !created {
				t.Error("Apply() first call should create")
			}
			if r.Rating == nil || *r.Rating != 4 || r.IsCollected || r.ItemID != 7 || r.OwnerID != u.ID || r.Kind != kind {
				t.Errorf("Apply() created %+v", r)
			}

			r, created, err = repo.Apply(ctx, u.ID, 7, RatingUpdate{IsCollected: boolPtr(true)})
			if err != nil {
				t.Fatalf("Apply() update error = %v", err)
			}
			if created {
				t.Error("Apply() second call should not create")
			}
			if r.Rating == nil || *r.Rating != 4 {
				t.Errorf("Apply() without rating should keep it, got %v", r.Rating)
			}
			if !r.IsCollected {
				t.Error("Apply() should set is_collected")
			}

			r, _, err = repo.Apply(ctx, u.ID, 7, RatingUpdate{SetRating: true})
			if err != nil {
				t.Fatalf("Apply() clear error = %v", err)
			}
			if r.Rating != nil {
				t.Errorf("Apply() with null rating should clear it, got %d", *r.Rating)
			}
			if !r.IsCollected {
				t.Error("Apply() clearing rating should not touch is_collected")
			}

			got, err := repo.Get(ctx, u.ID, 7)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.ID != r.ID {
				t.Errorf("Get() ID = %d, want %d", got.ID, r.ID)
			}
		})
	}
}

func TestRatingRepo_Apply_EmptyUpdateCreatesDefaults(t *testing.T) {
	db := newTestDB(t)
	repo := NewRatingRepo(db, KindCharacter)
	u := createUser(t, db, "summer")

	r, created, err := repo.Apply(context.Background(), u.ID, 1, RatingUpdate{})
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if !created || r.Rating != nil || r.IsCollected {
		t.Errorf("Apply() = %+v, created %v; want unrated, uncollected, created", r, created)
	}
}

func TestRatingRepo_KindsAreSeparate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := createUser(t, db, "beth")

	episodes := NewRatingRepo(db, KindEpisode)
	characters := NewRatingRepo(db, KindCharacter)

	if _, _, err := episodes.Apply(ctx, u.ID, 1, RatingUpdate{SetRating: true, Rating: intPtr(5)}); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if _, err := characters.Get(ctx, u.ID, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("character Get() error = %v, want ErrNotFound", err)
	}
}

func TestRatingRepo_Average(t *testing.T) {
	db := newTestDB(t)
	repo := NewRatingRepo(db, KindEpisode)
	ctx := context.Background()

	if _, ok, err := repo.Average(ctx, 1); err != nil || ok {
		t.Fatalf("Average() with no ratings = ok %v, err %v; want false, nil", ok, err)
	}

	a := createUser(t, db, "a")
	b := createUser(t, db, "b")
	c := createUser(t, db, "c")
	mustApply(t, repo, a.ID, 1, RatingUpdate{SetRating: true, Rating: intPtr(4)})
	mustApply(t, repo, b.ID, 1, RatingUpdate{SetRating: true, Rating: intPtr(5)})
	mustApply(t, repo, c.ID, 1, RatingUpdate{IsCollected: boolPtr(true)}) // unrated
	mustApply(t, repo, a.ID, 2, RatingUpdate{SetRating: true, Rating: intPtr(1)})

	avg, ok, err := repo.Average(ctx, 1)
	if err != nil || !ok {
		t.Fatalf("Average() = ok %v, err %v", ok, err)
	}
	if math.Abs(avg-4.5) > 1e-9 {
		t.Errorf("Average() = %v, want 4.5 (NULL ignored)", avg)
	}

	ownerAvg, ok, err := repo.OwnerAverage(ctx, a.ID)
	if err != nil || !ok {
		t.Fatalf("OwnerAverage() = ok %v, err %v", ok, err)
	}
	if math.Abs(ownerAvg-2.5) > 1e-9 {
		t.Errorf("OwnerAverage() = %v, want 2.5", ownerAvg)
	}
}

func TestRatingRepo_Collected(t *testing.T) {
	db := newTestDB(t)
	repo := NewRatingRepo(db, KindCharacter)
	ctx := context.Background()
	u := createUser(t, db, "rick")
	other := createUser(t, db, "jerry")

	list, err := repo.ListCollected(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListCollected() error = %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Errorf("ListCollected() = %v, want empty non-nil slice", list)
	}

	mustApply(t, repo, u.ID, 30, RatingUpdate{IsCollected: boolPtr(true)})
	mustApply(t, repo, u.ID, 10, RatingUpdate{IsCollected: boolPtr(true), SetRating: true, Rating: intPtr(3)})
	mustApply(t, repo, u.ID, 20, RatingUpdate{SetRating: true, Rating: intPtr(2)})
	mustApply(t, repo, other.ID, 40, RatingUpdate{IsCollected: boolPtr(true)})

	list, err = repo.ListCollected(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListCollected() error = %v", err)
	}
	if len(list) != 2 || list[0].ItemID != 10 || list[1].ItemID != 30 {
		t.Errorf("ListCollected() = %+v, want items 10 and 30", list)
	}

	n, err := repo.CountCollected(ctx, u.ID)
	if err != nil {
		t.Fatalf("CountCollected() error = %v", err)
	}
	if n != 2 {
		t.Errorf("CountCollected() = %d, want 2", n)
	}
}

func mustApply(t *testing.T, repo *RatingRepo, ownerID, itemID int64, update RatingUpdate) {
	t.Helper()
	if _, _, err := repo.Apply(context.Background(), ownerID, itemID, update); err != nil {
		t.Fatalf("Apply(%d, %d) error = %v", ownerID, itemID, err)
	}
}
