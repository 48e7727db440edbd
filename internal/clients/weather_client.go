package clients

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	weatherService = "weather api"

	weatherCacheTTL     = 10 * time.Minute
	weatherCacheCleanup = 5 * time.Minute
)

// ErrWeatherNotConfigured is returned when no API key is set.
var ErrWeatherNotConfigured = errors.New("weather api key is not configured")

// CurrentWeather is the widget view of WeatherAPI.com current conditions.
type CurrentWeather struct {
	Location      string  `json:"location"`
	Region        string  `json:"region"`
	Country       string  `json:"country"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	LocalTime     string  `json:"localTime"`
	TempC         float64 `json:"tempC"`
	FeelsLikeC    float64 `json:"feelsLikeC"`
	Humidity      float64 `json:"humidity"`
	PrecipMM      float64 `json:"precipMm"`
	WindKPH       float64 `json:"windKph"`
	Condition     string  `json:"condition"`
	ConditionIcon string  `json:"conditionIcon"`
}

// WeatherClient fetches current conditions from WeatherAPI.com. The key never
// leaves the server; results are cached briefly per query.
type WeatherClient struct {
	baseURL string
	apiKey  string
	http    *http.Client
	results *cache.Cache
}

// NewWeatherClient creates a WeatherAPI.com client.
func NewWeatherClient(baseURL, apiKey string, timeout time.Duration) *WeatherClient {
	return &WeatherClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		http:    newHTTPClient(timeout),
		results: cache.New(weatherCacheTTL, weatherCacheCleanup),
	}
}

// Configured reports whether an API key is set.
func (c *WeatherClient) Configured() bool {
	return c.apiKey != ""
}

type weatherAPIResponse struct {
	Location struct {
		Name      string  `json:"name"`
		Region    string  `json:"region"`
		Country   string  `json:"country"`
		Lat       float64 `json:"lat"`
		Lon       float64 `json:"lon"`
		LocalTime string  `json:"localtime"`
	} `json:"location"`
	Current struct {
		TempC      float64 `json:"temp_c"`
		FeelsLikeC float64 `json:"feelslike_c"`
		Humidity   float64 `json:"humidity"`
		PrecipMM   float64 `json:"precip_mm"`
		WindKPH    float64 `json:"wind_kph"`
		Condition  struct {
			Text string `json:"text"`
			Icon string `json:"icon"`
		} `json:"condition"`
	} `json:"current"`
}

// Current returns current conditions for q, which may be a city name,
// "lat,lng" or anything else WeatherAPI.com accepts.
func (c *WeatherClient) Current(ctx context.Context, q string) (*CurrentWeather, error) {
	if !c.Configured() {
		return nil, ErrWeatherNotConfigured
	}

	key := strings.ToLower(strings.TrimSpace(q))
	if cached, found := c.results.Get(key); found {
		w := cached.(CurrentWeather)
		return &w, nil
	}

	query := url.Values{"key": {c.apiKey}, "q": {strings.TrimSpace(q)}, "aqi": {"no"}}
	endpoint := c.baseURL + "/v1/current.json?" + query.Encode()

	var resp weatherAPIResponse
	if err := doJSON(ctx, c.http, weatherService, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	w := CurrentWeather{
		Location:      resp.Location.Name,
		Region:        resp.Location.Region,
		Country:       resp.Location.Country,
		Latitude:      resp.Location.Lat,
		Longitude:     resp.Location.Lon,
		LocalTime:     resp.Location.LocalTime,
		TempC:         resp.Current.TempC,
		FeelsLikeC:    resp.Current.FeelsLikeC,
		Humidity:      resp.Current.Humidity,
		PrecipMM:      resp.Current.PrecipMM,
		WindKPH:       resp.Current.WindKPH,
		Condition:     resp.Current.Condition.Text,
		ConditionIcon: resp.Current.Condition.Icon,
	}
	c.results.Set(key, w, cache.DefaultExpiration)
	return &w, nil
}
