package strata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Client is an HTTP Provider backed by a Macrostrat-compatible geology API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a Client for the given API base URL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("system", "strata"),
	}
}

type unitPayload struct {
	UnitName     string  `json:"unit_name"`
	Lith         string  `json:"lith"`
	TopAge       float64 `json:"t_age"`
	BottomAge    float64 `json:"b_age"`
	IntervalName string  `json:"b_int_name"`
	Environ      string  `json:"environ"`
	MaxThick     float64 `json:"max_thick"`
}

type columnPayload struct {
	ColName string        `json:"col_name"`
	Lat     float64       `json:"lat"`
	Lng     float64       `json:"lng"`
	Units   []unitPayload `json:"units"`
}

type columnResponse struct {
	Success struct {
		Data []columnPayload `json:"data"`
	} `json:"success"`
}

// Column fetches the stratigraphic column covering the coordinates.
func (c *Client) Column(ctx context.Context, lat, lng float64) (*Column, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, fmt.Errorf("%w: %v, %v", ErrInvalidCoords, lat, lng)
	}

	endpoint, err := c.columnURL(lat, lng)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrLookupFailed, resp.StatusCode)
	}

	var payload columnResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrLookupFailed, err)
	}

	if len(payload.Success.Data) == 0 {
		return nil, ErrNoColumn
	}

	column := mapColumn(payload.Success.Data[0])
	c.logger.Debug(
		"column resolved",
		"name", column.Name,
		"units", len(column.Units),
		"lat", lat,
		"lng", lng,
	)

	return column, nil
}

func (c *Client) columnURL(lat, lng float64) (string, error) {
	u, err := url.Parse(c.baseURL + "/columns")
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lng, 'f', -1, 64))
	q.Set("response", "long")
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func mapColumn(payload columnPayload) *Column {
	units := make([]Unit, len(payload.Units))
	for i, u := range payload.Units {
		units[i] = Unit{
			Name:        u.UnitName,
			Lithology:   u.Lith,
			AgeRange:    formatAgeRange(u.TopAge, u.BottomAge),
			Period:      u.IntervalName,
			Environment: u.Environ,
			Thickness:   u.MaxThick,
		}
	}

	return &Column{
		Name:      payload.ColName,
		Latitude:  payload.Lat,
		Longitude: payload.Lng,
		Units:     units,
	}
}

func formatAgeRange(topAge, bottomAge float64) string {
	if topAge == 0 && bottomAge == 0 {
		return ""
	}
	return fmt.Sprintf("%.1f-%.1f Ma", topAge, bottomAge)
}
