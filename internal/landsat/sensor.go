// Package landsat builds the greenness layer from Landsat Collection 2
// Level-2 surface reflectance scenes.
package landsat

import (
	"fmt"
	"strings"
	"time"
)

// Sensor names the reflectance bands of one Landsat instrument.
type Sensor struct {
	Name string
	NIR  string
	Red  string
}

var (
	TM   = Sensor{Name: "LT05", NIR: "SR_B4", Red: "SR_B3"}
	ETM  = Sensor{Name: "LE07", NIR: "SR_B4", Red: "SR_B3"}
	OLI8 = Sensor{Name: "LC08", NIR: "SR_B5", Red: "SR_B4"}
	OLI9 = Sensor{Name: "LC09", NIR: "SR_B5", Red: "SR_B4"}
)

var sensors = map[string]Sensor{
	TM.Name:   TM,
	ETM.Name:  ETM,
	OLI8.Name: OLI8,
	OLI9.Name: OLI9,
}

// SensorFor resolves the sensor from a product ID such as
// LC08_L2SP_018030_20200415_20200822_02_T1.
func SensorFor(productID string) (Sensor, error) {
	if len(productID) < 4 {
		return Sensor{}, fmt.Errorf("product id %q too short", productID)
	}
	s, ok := sensors[strings.ToUpper(productID[:4])]
	if !ok {
		return Sensor{}, fmt.Errorf("unsupported sensor in product id %q", productID)
	}
	return s, nil
}

// AcquisitionDate reads the acquisition date field of a product ID.
func AcquisitionDate(productID string) (time.Time, error) {
	parts := strings.Split(productID, "_")
	if len(parts) < 4 {
		return time.Time{}, fmt.Errorf("product id %q has no acquisition date", productID)
	}
	t, err := time.Parse("20060102", parts[3])
	if err != nil {
		return time.Time{}, fmt.Errorf("product id %q: %w", productID, err)
	}
	return t, nil
}
