package properties

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Beachman4/properview/internal/database"
	"github.com/Beachman4/properview/internal/models"
	"github.com/Beachman4/properview/internal/viewcache"
)

type stubGeocoder struct {
	point orb.Point
	err   error
	calls int
}

func (g *stubGeocoder) Geocode(ctx context.Context, query string) (orb.Point, error) {
	g.calls++
	if g.err != nil {
		return orb.Point{}, g.err
	}
	return g.point, nil
}

func newTestService(t *testing.T) (*Service, *gorm.DB, *stubGeocoder) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := database.NewDatabase(dsn)
	require.NoError(t, err)

	geocoder := &stubGeocoder{point: orb.Point{-74.006, 40.7128}}
	views := viewcache.NewCache(5 * time.Minute)
	t.Cleanup(views.Close)

	svc := NewService(db, geocoder, views, logrus.New(), 10)
	return svc, db, geocoder
}

func seedProperty(t *testing.T, db *gorm.DB, mutate func(*models.Property)) models.Property {
	t.Helper()

	property := models.Property{
		ID:               uuid.NewString(),
		Title:            "Test Listing",
		Price:            350000,
		Address:          "123 Main St",
		AddressLatitude:  40.7128,
		AddressLongitude: -74.006,
		Bedrooms:         3,
		Bathrooms:        2,
		Status:           models.StatusActive,
		AgentID:          "agent-1",
		CreatedAt:        time.Now(),
	}
	if mutate != nil {
		mutate(&property)
	}
	require.NoError(t, db.Create(&property).Error)
	return property
}

func TestPaginate_PriceRangeSingleMatch(t *testing.T) {
	svc, db, _ := newTestService(t)

	match := seedProperty(t, db, func(p *models.Property) { p.Price = 400000 })
	seedProperty(t, db, func(p *models.Property) { p.Price = 150000 })
	seedProperty(t, db, func(p *models.Property) { p.Price = 900000 })

	priceMin, priceMax := 200000.0, 600000.0
	page, err := svc.Paginate(context.Background(), ListQuery{
		Page: 1, Limit: 10,
		PriceMin: &priceMin, PriceMax: &priceMax,
		SortBy: "price", SortOrder: "asc",
	})
	require.NoError(t, err)

	require.Len(t, page.Data, 1)
	assert.Equal(t, match.ID, page.Data[0].ID)
	assert.Equal(t, int64(1), page.Meta.Total)
	assert.Equal(t, 1, page.Meta.TotalPages)
	assert.False(t, page.Meta.HasNext)
	assert.False(t, page.Meta.HasPrev)
}

func TestPaginate_MiddlePageMeta(t *testing.T) {
	svc, db, _ := newTestService(t)

	for i := 0; i < 25; i++ {
		seedProperty(t, db, nil)
	}

	page, err := svc.Paginate(context.Background(), ListQuery{Page: 2, Limit: 10})
	require.NoError(t, err)

	assert.Len(t, page.Data, 10)
	assert.Equal(t, int64(25), page.Meta.Total)
	assert.Equal(t, 3, page.Meta.TotalPages)
	assert.True(t, page.Meta.HasNext)
	assert.True(t, page.Meta.HasPrev)
}

func TestPaginate_OnlyActiveVisible(t *testing.T) {
	svc, db, _ := newTestService(t)

	active := seedProperty(t, db, nil)
	seedProperty(t, db, func(p *models.Property) { p.Status = models.StatusPending })
	seedProperty(t, db, func(p *models.Property) { p.Status = models.StatusSold })

	page, err := svc.Paginate(context.Background(), ListQuery{Page: 1, Limit: 10})
	require.NoError(t, err)

	require.Len(t, page.Data, 1)
	assert.Equal(t, active.ID, page.Data[0].ID)
}

func TestPaginate_UnrecognizedSortFallsBackToNewestFirst(t *testing.T) {
	svc, db, _ := newTestService(t)

	older := seedProperty(t, db, func(p *models.Property) {
		p.CreatedAt = time.Now().Add(-time.Hour)
	})
	newer := seedProperty(t, db, func(p *models.Property) {
		p.CreatedAt = time.Now()
	})

	page, err := svc.Paginate(context.Background(), ListQuery{
		Page: 1, Limit: 10, SortBy: "nonsense",
	})
	require.NoError(t, err)

	require.Len(t, page.Data, 2)
	assert.Equal(t, newer.ID, page.Data[0].ID)
	assert.Equal(t, older.ID, page.Data[1].ID)
}

func TestPaginate_RangeFiltersAllSatisfied(t *testing.T) {
	svc, db, _ := newTestService(t)

	for i := 1; i <= 6; i++ {
		i := i
		seedProperty(t, db, func(p *models.Property) {
			p.Bedrooms = i
			p.Bathrooms = float64(i)
			p.Price = float64(i) * 100000
		})
	}

	bedroomsMin, bedroomsMax := 2, 5
	bathroomsMin := 3.0
	page, err := svc.Paginate(context.Background(), ListQuery{
		Page: 1, Limit: 10,
		BedroomsMin: &bedroomsMin, BedroomsMax: &bedroomsMax,
		BathroomsMin: &bathroomsMin,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(3), page.Meta.Total)
	for _, row := range page.Data {
		assert.GreaterOrEqual(t, row.Bedrooms, 2)
		assert.LessOrEqual(t, row.Bedrooms, 5)
		assert.GreaterOrEqual(t, row.Bathrooms, 3.0)
	}
}

func TestPaginate_LocationOrdersByDistance(t *testing.T) {
	svc, db, geocoder := newTestService(t)
	geocoder.point = orb.Point{-74.006, 40.7128} // lower Manhattan

	nearest := seedProperty(t, db, func(p *models.Property) {
		p.Title = "Tribeca"
		p.AddressLatitude, p.AddressLongitude = 40.7163, -74.0086
	})
	near := seedProperty(t, db, func(p *models.Property) {
		p.Title = "Brooklyn Heights"
		p.AddressLatitude, p.AddressLongitude = 40.696, -73.993
	})
	// Philadelphia, ~80 miles out, beyond the 10 mile radius
	seedProperty(t, db, func(p *models.Property) {
		p.Title = "Philadelphia"
		p.AddressLatitude, p.AddressLongitude = 39.9526, -75.1652
	})

	page, err := svc.Paginate(context.Background(), ListQuery{
		Page: 1, Limit: 10, Location: "New York, NY",
	})
	require.NoError(t, err)

	require.Len(t, page.Data, 2)
	assert.Equal(t, nearest.ID, page.Data[0].ID)
	assert.Equal(t, near.ID, page.Data[1].ID)
	assert.Equal(t, int64(2), page.Meta.Total)
	assert.Equal(t, 1, geocoder.calls)
}

func TestPaginate_LocationAppliesRangeFilters(t *testing.T) {
	svc, db, _ := newTestService(t)

	cheap := seedProperty(t, db, func(p *models.Property) { p.Price = 200000 })
	seedProperty(t, db, func(p *models.Property) { p.Price = 900000 })

	priceMax := 500000.0
	page, err := svc.Paginate(context.Background(), ListQuery{
		Page: 1, Limit: 10, Location: "New York, NY", PriceMax: &priceMax,
	})
	require.NoError(t, err)

	require.Len(t, page.Data, 1)
	assert.Equal(t, cheap.ID, page.Data[0].ID)
}

func TestPaginate_GeocoderFailureIsFatal(t *testing.T) {
	svc, db, geocoder := newTestService(t)
	geocoder.err = fmt.Errorf("provider unavailable")

	seedProperty(t, db, nil)

	_, err := svc.Paginate(context.Background(), ListQuery{
		Page: 1, Limit: 10, Location: "New York, NY",
	})
	assert.Error(t, err)
}

func TestCreate_PersistsGeocodedCoordinates(t *testing.T) {
	svc, db, geocoder := newTestService(t)
	geocoder.point = orb.Point{4.8952, 52.3702}

	created, err := svc.Create(context.Background(), "agent-1", PropertyInput{
		Title:     "Canal House",
		Price:     750000,
		Address:   "Herengracht 1, Amsterdam",
		Bedrooms:  4,
		Bathrooms: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, geocoder.calls)
	assert.InDelta(t, 52.3702, created.AddressLatitude, 1e-9)
	assert.InDelta(t, 4.8952, created.AddressLongitude, 1e-9)
	assert.Equal(t, int64(0), created.Views)
	assert.Equal(t, models.StatusActive, created.Status)

	var stored models.Property
	require.NoError(t, db.First(&stored, "id = ?", created.ID).Error)
	assert.Equal(t, "agent-1", stored.AgentID)
}

func TestCreate_GeocodeFailureAbortsCreation(t *testing.T) {
	svc, db, geocoder := newTestService(t)
	geocoder.err = fmt.Errorf("no match")

	_, err := svc.Create(context.Background(), "agent-1", PropertyInput{
		Title: "Nowhere", Price: 100, Address: "???",
	})
	require.Error(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Property{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestUpdate_UnchangedAddressSkipsGeocoder(t *testing.T) {
	svc, db, geocoder := newTestService(t)

	property := seedProperty(t, db, nil)

	updated, err := svc.Update(context.Background(), property.ID, property.AgentID, UpdateInput{
		PropertyInput: PropertyInput{
			Title:     "Renamed",
			Price:     360000,
			Address:   property.Address,
			Bedrooms:  property.Bedrooms,
			Bathrooms: property.Bathrooms,
		},
		Status: models.StatusPending,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, geocoder.calls)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, models.StatusPending, updated.Status)
	assert.Equal(t, property.AddressLatitude, updated.AddressLatitude)
	assert.Equal(t, property.AddressLongitude, updated.AddressLongitude)
}

func TestUpdate_ChangedAddressGeocodesOnce(t *testing.T) {
	svc, db, geocoder := newTestService(t)
	geocoder.point = orb.Point{-73.9857, 40.7484}

	property := seedProperty(t, db, nil)

	updated, err := svc.Update(context.Background(), property.ID, property.AgentID, UpdateInput{
		PropertyInput: PropertyInput{
			Title:     property.Title,
			Price:     property.Price,
			Address:   "350 5th Ave, New York",
			Bedrooms:  property.Bedrooms,
			Bathrooms: property.Bathrooms,
		},
		Status: models.StatusActive,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, geocoder.calls)
	assert.InDelta(t, 40.7484, updated.AddressLatitude, 1e-9)
	assert.InDelta(t, -73.9857, updated.AddressLongitude, 1e-9)
}

func TestUpdate_ForeignOwnerIsNotFound(t *testing.T) {
	svc, db, _ := newTestService(t)

	property := seedProperty(t, db, nil)

	_, err := svc.Update(context.Background(), property.ID, "someone-else", UpdateInput{
		PropertyInput: PropertyInput{Address: property.Address},
		Status:        models.StatusActive,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete_ForeignOwnerLeavesRowIntact(t *testing.T) {
	svc, db, _ := newTestService(t)

	property := seedProperty(t, db, nil)

	err := svc.Delete(context.Background(), property.ID, "someone-else")
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	require.NoError(t, db.Model(&models.Property{}).Where("id = ?", property.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestDelete_OwnedPropertyRemoved(t *testing.T) {
	svc, db, _ := newTestService(t)

	property := seedProperty(t, db, nil)

	require.NoError(t, svc.Delete(context.Background(), property.ID, property.AgentID))

	var count int64
	require.NoError(t, db.Model(&models.Property{}).Where("id = ?", property.ID).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestIncrementView_DedupedWithinWindow(t *testing.T) {
	svc, db, _ := newTestService(t)

	property := seedProperty(t, db, nil)

	counted, err := svc.IncrementView(context.Background(), property.ID, "1.2.3.4")
	require.NoError(t, err)
	assert.True(t, counted)

	counted, err = svc.IncrementView(context.Background(), property.ID, "1.2.3.4")
	require.NoError(t, err)
	assert.False(t, counted)

	counted, err = svc.IncrementView(context.Background(), property.ID, "5.6.7.8")
	require.NoError(t, err)
	assert.True(t, counted)

	var stored models.Property
	require.NoError(t, db.First(&stored, "id = ?", property.ID).Error)
	assert.Equal(t, int64(2), stored.Views)
}

func TestPaginateByAgent_ScopedAndHydrated(t *testing.T) {
	svc, db, _ := newTestService(t)

	mine := seedProperty(t, db, func(p *models.Property) {
		p.Status = models.StatusSold
		p.Views = 10
	})
	seedProperty(t, db, func(p *models.Property) { p.AgentID = "agent-2" })

	for i := 0; i < 4; i++ {
		require.NoError(t, db.Create(&models.Inquiry{
			ID:         uuid.NewString(),
			PropertyID: mine.ID,
			Name:       "Visitor",
			Email:      "visitor@example.com",
			Phone:      "555-0100",
		}).Error)
	}

	page, err := svc.PaginateByAgent(context.Background(), "agent-1", 1, 10)
	require.NoError(t, err)

	require.Len(t, page.Data, 1)
	assert.Equal(t, mine.ID, page.Data[0].ID)
	assert.Equal(t, models.StatusSold, page.Data[0].Status)
	assert.Equal(t, int64(4), page.Data[0].Inquiries)
	assert.InDelta(t, 0.4, page.Data[0].ConversionRate, 1e-9)
}

func TestRetrieveByIDAndAgent_NotFoundForForeignOwner(t *testing.T) {
	svc, db, _ := newTestService(t)

	property := seedProperty(t, db, nil)

	_, err := svc.RetrieveByIDAndAgent(context.Background(), property.ID, "someone-else")
	assert.ErrorIs(t, err, ErrNotFound)
}
