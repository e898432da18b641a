package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/mietradar/internal/core/domain"
)

// observationInput is the accepted request body for user observations.
// Server-managed fields (seq, provenance, date entered) are not accepted.
type observationInput struct {
	NeighborhoodID    string           `json:"neighborhood_id"`
	Coordinates       *domain.GeoPoint `json:"coordinates"`
	MonthlyRent       float64          `json:"monthly_rent"`
	AreaSqm           float64          `json:"area_sqm"`
	Rooms             float64          `json:"rooms"`
	YearBuilt         int              `json:"year_built"`
	PricePerSqm       float64          `json:"price_per_sqm"`
	HasBalcony        bool             `json:"has_balcony"`
	HasElevator       bool             `json:"has_elevator"`
	RecentlyRenovated bool             `json:"recently_renovated"`
	Description       string           `json:"description"`
}

func (in *observationInput) toDomain() *domain.RentObservation {
	return &domain.RentObservation{
		NeighborhoodID: in.NeighborhoodID,
		Coordinates:    in.Coordinates,
		MonthlyRent:    in.MonthlyRent,
		AreaSqm:        in.AreaSqm,
		Rooms:          in.Rooms,
		YearBuilt:      in.YearBuilt,
		PricePerSqm:    in.PricePerSqm,
		HasBalcony:     in.HasBalcony,
		HasElevator:    in.HasElevator,
		Renovated:      in.RecentlyRenovated,
		Description:    in.Description,
	}
}

// ResolveResult is the response of the resolve endpoint. NeighborhoodID is
// null when the point lies outside every neighborhood.
type ResolveResult struct {
	NeighborhoodID   *string  `json:"neighborhood_id"`
	Name             string   `json:"name,omitempty"`
	DistanceToCenter *float64 `json:"distance_to_center_m,omitempty"`
}

func categoryParam(c *fiber.Ctx) (domain.DwellingCategory, error) {
	return domain.ParseCategory(c.Params("category"))
}

func parseObservationBody(c *fiber.Ctx) (*domain.RentObservation, error) {
	var in observationInput
	if err := c.BodyParser(&in); err != nil {
		return nil, err
	}
	return in.toDomain(), nil
}

// ListNeighborhoodsHandler returns all neighborhoods with their centers.
func ListNeighborhoodsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		all := deps.Neighborhoods.List()

		offset, limit := pageParams(c, 100, 500)
		start, end := pageBounds(offset, limit, len(all))

		pg := Pagination{Offset: offset, Limit: limit, Total: len(all)}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: all[start:end], Pagination: pg})
	}
}

// NeighborhoodCenterHandler returns the center of one neighborhood.
func NeighborhoodCenterHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		center, ok := deps.Neighborhoods.Center(id)
		if !ok {
			return errNotFound(c, "neighborhood not found")
		}
		return c.JSON(center)
	}
}

// ResolveHandler maps a coordinate to the containing neighborhood.
func ResolveHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
		lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
		if errLng != nil || errLat != nil {
			return errBadRequest(c, "lng and lat are required")
		}
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return errBadRequest(c, "coordinates out of range")
		}

		var res ResolveResult
		if id, ok := deps.Neighborhoods.Resolve(lng, lat); ok {
			res.NeighborhoodID = &id
			if n, ok := deps.Neighborhoods.Get(id); ok {
				res.Name = n.Name
			}
			if d, ok := deps.Neighborhoods.DistanceToCenter(id, domain.GeoPoint{Lat: lat, Lng: lng}); ok {
				res.DistanceToCenter = &d
			}
		}
		return c.JSON(res)
	}
}

// ListStatsHandler returns merged statistics of every neighborhood for a category.
func ListStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category, err := categoryParam(c)
		if err != nil {
			return errFromService(c, err)
		}
		stats, err := deps.Stats.SortedStats(c.UserContext(), category)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(fiber.Map{"category": category, "data": stats})
	}
}

// NeighborhoodStatsHandler returns merged statistics of one neighborhood.
func NeighborhoodStatsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category, err := categoryParam(c)
		if err != nil {
			return errFromService(c, err)
		}
		st, err := deps.Stats.StatsFor(c.UserContext(), category, c.Params("id"))
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(st)
	}
}

// DistributionHandler returns rent distribution statistics of one neighborhood.
func DistributionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category, err := categoryParam(c)
		if err != nil {
			return errFromService(c, err)
		}
		id := c.Params("id")
		d, err := deps.Stats.Distribution(c.UserContext(), category, id)
		if err != nil {
			return errFromService(c, err)
		}
		if d.Count == 0 && !deps.Neighborhoods.Exists(id) {
			return errNotFound(c, "neighborhood not found")
		}
		return c.JSON(d)
	}
}

// AppendObservationHandler stores a new user observation.
func AppendObservationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category, err := categoryParam(c)
		if err != nil {
			return errFromService(c, err)
		}
		obs, err := parseObservationBody(c)
		if err != nil {
			return errBadRequest(c, "invalid request body")
		}
		stored, err := deps.Observations.Append(c.UserContext(), category, obs)
		if err != nil {
			return errFromService(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(stored)
	}
}

// ListObservationsHandler returns the user partition of a category, paginated.
func ListObservationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category, err := categoryParam(c)
		if err != nil {
			return errFromService(c, err)
		}
		all, err := deps.Observations.List(c.UserContext(), category)
		if err != nil {
			return errFromService(c, err)
		}

		offset, limit := pageParams(c, 50, 200)
		start, end := pageBounds(offset, limit, len(all))
		page := all[start:end]
		if page == nil {
			page = []domain.RentObservation{}
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: len(all)}
		SetLinkHeaders(c, pg)
		c.Set("Cache-Control", "no-store")
		return c.JSON(PaginatedResponse{Data: page, Pagination: pg})
	}
}

// ReplaceObservationHandler overwrites the observation at an index. An index
// outside the partition is accepted and changes nothing.
func ReplaceObservationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category, err := categoryParam(c)
		if err != nil {
			return errFromService(c, err)
		}
		index, err := c.ParamsInt("index")
		if err != nil {
			return errBadRequest(c, "index must be an integer")
		}
		obs, err := parseObservationBody(c)
		if err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Observations.Replace(c.UserContext(), category, index, obs); err != nil {
			return errFromService(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// RemoveObservationHandler deletes the observation at an index. An index
// outside the partition is accepted and changes nothing.
func RemoveObservationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category, err := categoryParam(c)
		if err != nil {
			return errFromService(c, err)
		}
		index, err := c.ParamsInt("index")
		if err != nil {
			return errBadRequest(c, "index must be an integer")
		}
		if err := deps.Observations.Remove(c.UserContext(), category, index); err != nil {
			return errFromService(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ClearObservationsHandler removes every user observation of a category.
func ClearObservationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category, err := categoryParam(c)
		if err != nil {
			return errFromService(c, err)
		}
		if err := deps.Observations.RemoveAll(c.UserContext(), category); err != nil {
			return errFromService(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// LatestObservationHandler returns the most recently added observation.
func LatestObservationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		latest, err := deps.Observations.Latest(c.UserContext())
		if err != nil {
			return errFromService(c, err)
		}
		if latest == nil {
			return errNotFound(c, "no observations yet")
		}
		c.Set("Cache-Control", "no-store")
		return c.JSON(latest)
	}
}

// CheckRentHandler compares a rent with its neighborhood without storing it.
func CheckRentHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		category, err := categoryParam(c)
		if err != nil {
			return errFromService(c, err)
		}
		obs, err := parseObservationBody(c)
		if err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Observations.Prepare(category, obs); err != nil {
			return errFromService(c, err)
		}
		check, err := deps.Stats.CheckRent(c.UserContext(), category, obs)
		if err != nil {
			return errFromService(c, err)
		}
		return c.JSON(check)
	}
}
