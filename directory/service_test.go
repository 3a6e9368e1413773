package directory

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"sync"
	"testing"
	"time"

	"cafe-directory/auth"
	"cafe-directory/cache"
	"cafe-directory/config"
	"cafe-directory/database"
	"cafe-directory/models"
	"cafe-directory/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/logger"
)

func TestMain(m *testing.M) {
	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})
	os.Exit(m.Run())
}

type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return v, ok
}

func (c *memoryCache) Set(key string, value []byte, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
}

func (c *memoryCache) Delete(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
}

func (c *memoryCache) Close() {}

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	dbConn, err := database.Open(filepath.Join(t.TempDir(), "cafe.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { dbConn.Close() })
	if err := database.Migrate(dbConn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return dbConn
}

func newTestService(t *testing.T, withCache bool) (*Service, *memoryCache) {
	t.Helper()
	dbConn := newTestDB(t)

	repo := repository.NewCafeRepository(dbConn)
	if !withCache {
		return NewService(repo, nil), nil
	}
	c := newMemoryCache()
	return NewService(repo, c), c
}

func form(name, location string) models.CafeForm {
	return models.CafeForm{
		Name:        name,
		MapURL:      "https://maps.example.com/" + name,
		ImgURL:      "https://img.example.com/" + name + ".jpg",
		Location:    location,
		Seats:       "10-20",
		HasToilet:   "yes",
		HasWifi:     "true",
		HasSockets:  "",
		Rating:      "★★★★",
		CoffeePrice: "£2.40",
	}
}

var admin = &models.User{ID: 1, Email: "admin@example.com", Admin: true}

func TestCreateAndGetOne(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, false)

	cafe, err := svc.Create(ctx, form("Science Gallery", "London Bridge"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if cafe.ID == 0 {
		t.Fatal("Create() returned no id")
	}
	if !cafe.HasToilet || !cafe.HasWifi || cafe.HasSockets {
		t.Errorf("flags = toilet:%v wifi:%v sockets:%v, want true true false", cafe.HasToilet, cafe.HasWifi, cafe.HasSockets)
	}

	got, err := svc.GetOne(ctx, cafe.ID)
	if err != nil {
		t.Fatalf("GetOne() error = %v", err)
	}
	if !reflect.DeepEqual(got, cafe) {
		t.Errorf("GetOne() = %+v, want %+v", got, cafe)
	}

	if _, err := svc.GetOne(ctx, cafe.ID+100); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetOne(missing) error = %v, want ErrNotFound", err)
	}
}

func TestCreateDuplicateName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, false)

	if _, err := svc.Create(ctx, form("Twin", "NYC")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, form("Twin", "LA")); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("Create() duplicate error = %v, want ErrDuplicateName", err)
	}

	all, _ := svc.ListAll(ctx)
	if len(all) != 1 {
		t.Errorf("ListAll() has %d cafés after rejected duplicate, want 1", len(all))
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newTestService(t, false)

	f := form("", "NYC")
	f.Seats = ""
	f.HasWifi = "maybe"
	f.CoffeePrice = ""

	_, err := svc.Create(context.Background(), f)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Create() error = %v, want ValidationError", err)
	}

	var fields []string
	for _, fe := range verr.Fields {
		fields = append(fields, fe.Field)
	}
	sort.Strings(fields)
	want := []string{"has_wifi", "name", "seats"}
	if !reflect.DeepEqual(fields, want) {
		t.Errorf("invalid fields = %v, want %v", fields, want)
	}
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, false)

	original, err := svc.Create(ctx, form("Grind", "NYC"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	unchanged, err := svc.Update(ctx, original.ID, models.FormFromCafe(original))
	if err != nil {
		t.Fatalf("Update() unchanged error = %v", err)
	}
	if !reflect.DeepEqual(unchanged, original) {
		t.Errorf("Update() with unchanged fields = %+v, want %+v", unchanged, original)
	}

	f := form("Grind & Co", "LA")
	f.HasWifi = "no"
	updated, err := svc.Update(ctx, original.ID, f)
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, _ := svc.GetOne(ctx, original.ID)
	if !reflect.DeepEqual(got, updated) || got.Name != "Grind & Co" || got.HasWifi {
		t.Errorf("stored = %+v, returned = %+v", got, updated)
	}

	if _, err := svc.Update(ctx, 999, f); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}

	other, _ := svc.Create(ctx, form("Other", "LA"))
	if _, err := svc.Update(ctx, other.ID, f); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("Update() to taken name error = %v, want ErrDuplicateName", err)
	}

	bad := f
	bad.Rating = ""
	var verr *ValidationError
	if _, err := svc.Update(ctx, original.ID, bad); !errors.As(err, &verr) {
		t.Errorf("Update() invalid form error = %v, want ValidationError", err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, false)

	cafe, _ := svc.Create(ctx, form("Doomed", "NYC"))

	for name, actor := range map[string]*models.User{
		"anonymous": nil,
		"member":    {ID: 2, Email: "member@example.com"},
	} {
		if err := svc.Delete(ctx, actor, cafe.ID); !errors.Is(err, auth.ErrForbidden) {
			t.Errorf("Delete() by %s error = %v, want ErrForbidden", name, err)
		}
	}

	if err := svc.Delete(ctx, admin, cafe.ID); err != nil {
		t.Fatalf("Delete() by admin error = %v", err)
	}
	all, _ := svc.ListAll(ctx)
	for _, c := range all {
		if c.ID == cafe.ID {
			t.Fatal("deleted café still listed")
		}
	}

	if err := svc.Delete(ctx, admin, cafe.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() again error = %v, want ErrNotFound", err)
	}
}

func TestLocations(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, false)

	for i, loc := range []string{"NYC", "NYC", "LA"} {
		if _, err := svc.Create(ctx, form("Cafe "+string(rune('A'+i)), loc)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	locations, err := svc.DistinctLocations(ctx)
	if err != nil {
		t.Fatalf("DistinctLocations() error = %v", err)
	}
	sort.Strings(locations)
	if !reflect.DeepEqual(locations, []string{"LA", "NYC"}) {
		t.Errorf("DistinctLocations() = %v, want {NYC, LA}", locations)
	}

	la, err := svc.ByLocation(ctx, "LA")
	if err != nil {
		t.Fatalf("ByLocation() error = %v", err)
	}
	if len(la) != 1 || la[0].Location != "LA" {
		t.Errorf("ByLocation(LA) = %+v, want one café", la)
	}

	chicago, err := svc.ByLocation(ctx, "Chicago")
	if err != nil {
		t.Fatalf("ByLocation() error = %v", err)
	}
	if len(chicago) != 0 {
		t.Errorf("ByLocation(Chicago) = %+v, want empty", chicago)
	}
}

func TestListAllUsesCache(t *testing.T) {
	ctx := context.Background()
	svc, c := newTestService(t, true)

	if _, err := svc.Create(ctx, form("First", "NYC")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	first, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	second, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if c.hits != 1 {
		t.Errorf("cache hits = %d, want 1", c.hits)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("cached listing = %+v, want %+v", second, first)
	}

	if _, err := svc.Create(ctx, form("Second", "LA")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	third, _ := svc.ListAll(ctx)
	if len(third) != 2 {
		t.Errorf("ListAll() after create = %d cafés, want 2 (stale cache?)", len(third))
	}

	locs, _ := svc.DistinctLocations(ctx)
	if len(locs) != 2 {
		t.Errorf("DistinctLocations() = %v, want 2 entries", locs)
	}
}

func TestParseCafeForm(t *testing.T) {
	values := url.Values{
		"name":         {"  Padded  "},
		"map_url":      {"m"},
		"img_url":      {"i"},
		"location":     {"Soho"},
		"seats":        {"50+"},
		"has_toilet":   {"on"},
		"rating":       {"3"},
		"coffee_price": {"£3"},
	}
	f := ParseCafeForm(values)
	if f.Name != "Padded" || f.HasToilet != "on" || f.HasWifi != "" || f.CoffeePrice != "£3" {
		t.Errorf("ParseCafeForm() = %+v", f)
	}

	cafe, err := toCafe(f)
	if err != nil {
		t.Fatalf("toCafe() error = %v", err)
	}
	if !cafe.HasToilet || cafe.HasWifi || cafe.HasSockets {
		t.Errorf("flags = %+v", cafe)
	}
}

func TestListingServedFromRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	store, err := cache.InitializeCache(&config.Config{CacheType: "redis", RedisAddr: mr.Addr()})
	if err != nil {
		t.Fatalf("InitializeCache() error = %v", err)
	}
	defer store.Close()

	repo := repository.NewCafeRepository(newTestDB(t))
	svc := NewService(repo, store)
	if _, err := svc.Create(ctx, form("Cached", "NYC")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.ListAll(ctx); err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if _, err := svc.DistinctLocations(ctx); err != nil {
		t.Fatalf("DistinctLocations() error = %v", err)
	}
	if !mr.Exists(listCacheKey) || !mr.Exists(locationsCacheKey) {
		t.Fatal("listing not written to redis")
	}

	// A row written behind the service's back is only visible once the
	// cached listing is bypassed, so an unchanged result proves a hit.
	if err := repo.Insert(ctx, &models.Cafe{Name: "Hidden", MapURL: "m", ImgURL: "i", Location: "LA", Seats: "5", Rating: "3"}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}
	cafes, err := svc.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(cafes) != 1 || cafes[0].Name != "Cached" {
		t.Errorf("ListAll() = %+v, want the cached single café", cafes)
	}
	locations, _ := svc.DistinctLocations(ctx)
	if !reflect.DeepEqual(locations, []string{"NYC"}) {
		t.Errorf("DistinctLocations() = %v, want cached [NYC]", locations)
	}

	if _, err := svc.Create(ctx, form("Fresh", "Paris")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if mr.Exists(listCacheKey) || mr.Exists(locationsCacheKey) {
		t.Error("write did not invalidate the redis listing")
	}
	cafes, _ = svc.ListAll(ctx)
	if len(cafes) != 3 {
		t.Errorf("ListAll() after invalidation = %d cafés, want 3", len(cafes))
	}
}
