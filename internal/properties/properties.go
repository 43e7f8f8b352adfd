package properties

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func RootPath() string {
	return os.Getenv("ROOT_PATH")
}

// Config holds every runtime setting of the pipeline. Paths are relative to
// RootPath unless absolute.
type Config struct {
	LogFormat string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	RegionPath      string   `envconfig:"REGION_PATH" default:"data/input/region.geojson" validate:"required"`
	RegionField     string   `envconfig:"REGION_FIELD" default:"NAME"`
	RegionNames     []string `envconfig:"REGION_NAMES"`
	WatershedsPath  string   `envconfig:"WATERSHEDS_PATH" default:"data/input/huc12.geojson" validate:"required"`
	WatershedField  string   `envconfig:"WATERSHED_ID_FIELD" default:"HUC12"`
	WatershedName   string   `envconfig:"WATERSHED_NAME_FIELD" default:"NAME"`
	FlowlinesPath   string   `envconfig:"FLOWLINES_PATH" default:"data/input/flowlines.geojson" validate:"required"`
	DEMPath         string   `envconfig:"DEM_PATH" default:"data/input/dem.tif" validate:"required"`
	FlowAccPath     string   `envconfig:"FLOW_ACC_PATH" default:"data/input/flow_acc.tif" validate:"required"`
	ScenesDir       string   `envconfig:"SCENES_DIR" default:"data/input/landsat" validate:"required"`
	SamplesPath     string   `envconfig:"SAMPLES_PATH" default:"data/input/nitrate.csv" validate:"required"`
	OutputDir       string   `envconfig:"OUTPUT_DIR" default:"data/result" validate:"required"`
	CacheDir        string   `envconfig:"CACHE_DIR" default:"data/cache"`
	EPSG            int      `envconfig:"EPSG" default:"32616" validate:"gt=0"`
	Resolution      float64  `envconfig:"RESOLUTION" default:"30" validate:"gt=0"`
	Year            int      `envconfig:"YEAR" default:"2023" validate:"gte=1984,lte=2100"`
	GatingRadius    float64  `envconfig:"GATING_RADIUS" default:"240" validate:"gt=0"`
	MaxPixels       int64    `envconfig:"MAX_PIXELS" default:"10000000000" validate:"gte=0"`
	Workers         int      `envconfig:"WORKERS" default:"4" validate:"gte=1"`
	SaturationLimit float64  `envconfig:"SATURATION_LIMIT" default:"0.5" validate:"gte=0,lte=1"`
	Discharge       float64  `envconfig:"DEFAULT_DISCHARGE" default:"1" validate:"gte=0"`

	SampleStart time.Time `envconfig:"SAMPLE_START"`
	SampleEnd   time.Time `envconfig:"SAMPLE_END"`

	HTTPAddr       string        `envconfig:"HTTP_ADDR" default:":8080" validate:"required"`
	RequestTimeout time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`

	DiscordErrorURL   string `envconfig:"DISCORD_ERROR_NOTIFICATION_URL" validate:"omitempty,url"`
	DiscordSuccessURL string `envconfig:"DISCORD_SUCCESS_NOTIFICATION_URL" validate:"omitempty,url"`
}

// Load reads an optional .env file, then the process environment, and
// validates the result. Variables already set take precedence over .env.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment configuration: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Path resolves p against RootPath.
func Path(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(RootPath(), p)
}

type Color struct {
	R, G, B uint8
}

// Palettes for quicklook rendering, low to high.
var (
	NRIPalette = []Color{
		{255, 255, 255},
		{0xe0, 0xf3, 0xdb},
		{0xa8, 0xdd, 0xb5},
		{0x43, 0xa2, 0xca},
		{0x08, 0x68, 0xac},
	}
	NDVIPalette = []Color{
		{0xff, 0xff, 0xe5},
		{0xd9, 0xf0, 0xa3},
		{0x78, 0xc6, 0x79},
		{0x23, 0x84, 0x43},
		{0x00, 0x68, 0x37},
	}
	TNRIPalette = []Color{
		{255, 255, 255},
		{144, 238, 144},
		{0, 128, 0},
		{0, 100, 0},
	}
)

var ColorMap = map[string][]Color{
	"nri":       NRIPalette,
	"tnri":      TNRIPalette,
	"ndvi":      NDVIPalette,
	"greenness": NDVIPalette,
}
