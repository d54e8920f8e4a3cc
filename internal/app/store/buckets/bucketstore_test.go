package buckets_test

import (
	"sync"
	"testing"

	"github.com/pocketwell/pocketwell/internal/app/store/buckets"
	"github.com/pocketwell/pocketwell/internal/datekey"
	"github.com/pocketwell/pocketwell/internal/testutil"
)

const day = datekey.DateKey("2026-09-01")

func TestStore_Increment(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := buckets.NewWater(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for want := int64(1); want <= 5; want++ {
		got, err := store.Increment(ctx, "u1", day)
		if err != nil {
			t.Fatalf("Increment() error = %v", err)
		}
		if got != want {
			t.Errorf("Increment() = %d, want %d", got, want)
		}
	}

	// Another user's buckets are untouched.
	if v, err := store.Get(ctx, "u2", day); err != nil || v != 0 {
		t.Errorf("Get(u2) = %d, %v, want 0, nil", v, err)
	}
}

func TestStore_Increment_Concurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := buckets.NewWater(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Rapid repeated taps from the app must not lose increments.
	const n = 30
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Increment(ctx, "u1", day); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent Increment() error = %v", err)
	}

	got, err := store.Get(ctx, "u1", day)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != n {
		t.Errorf("count after %d concurrent increments = %d", n, got)
	}
}

func TestStore_Replace_LastWriteWins(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := buckets.NewSteps(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, v := range []int64{1200, 4800, 3500} {
		got, err := store.Replace(ctx, "u1", day, v)
		if err != nil {
			t.Fatalf("Replace(%d) error = %v", v, err)
		}
		if got != v {
			t.Errorf("Replace(%d) = %d", v, got)
		}
	}

	// Stored value is the last report, not the sum.
	got, err := store.Get(ctx, "u1", day)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != 3500 {
		t.Errorf("Get() = %d, want 3500", got)
	}
}

func TestStore_Replace_RejectsNegative(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := buckets.NewSteps(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Replace(ctx, "u1", day, -1); err == nil {
		t.Error("Replace(-1) should fail")
	}
}

func TestStore_Get_MissingIsZero(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := buckets.NewWater(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if v, err := store.Get(ctx, "nobody", day); err != nil || v != 0 {
		t.Errorf("Get() = %d, %v, want 0, nil", v, err)
	}
}

func TestStore_GetRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := buckets.NewWater(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Increment(ctx, "u1", "2026-09-01"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Increment(ctx, "u1", "2026-09-01"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Increment(ctx, "u1", "2026-09-03"); err != nil {
		t.Fatal(err)
	}

	dates := datekey.Enumerate("2026-08-31", "2026-09-03")
	got, err := store.GetRange(ctx, "u1", dates)
	if err != nil {
		t.Fatalf("GetRange() error = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("GetRange() returned %d entries, want 4", len(got))
	}

	want := map[datekey.DateKey]int64{
		"2026-08-31": 0,
		"2026-09-01": 2,
		"2026-09-02": 0,
		"2026-09-03": 1,
	}
	for d, w := range want {
		if got[d] != w {
			t.Errorf("GetRange()[%s] = %d, want %d", d, got[d], w)
		}
	}
}

func TestStore_GetRange_NoDocument(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := buckets.NewSteps(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	dates := datekey.Enumerate("2026-09-01", "2026-09-07")
	got, err := store.GetRange(ctx, "ghost", dates)
	if err != nil {
		t.Fatalf("GetRange() error = %v", err)
	}
	for d, v := range got {
		if v != 0 {
			t.Errorf("GetRange()[%s] = %d, want 0", d, v)
		}
	}
}
