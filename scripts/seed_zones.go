// seed_zones.go — standalone script to generate a demo zone GeoJSON file for
// local runs of quarterhour.
//
// Usage:
//
//	go run scripts/seed_zones.go -out final_result.geojson -zones 12
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Metric value ranges loosely matching the Montreal senior-housing dataset.
var metricRanges = map[string][2]float64{
	"amenity":   {0, 60},
	"bank":      {0, 8},
	"food":      {0, 40},
	"health":    {0, 12},
	"shop":      {0, 50},
	"sport":     {0, 10},
	"transport": {0, 25},
	"greenery":  {0, 15},
}

func main() {
	out := flag.String("out", "final_result.geojson", "output GeoJSON path")
	zones := flag.Int("zones", 12, "number of zones to generate")
	seed := flag.Int64("seed", 1, "random seed")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))
	fc := geojson.NewFeatureCollection()

	// Island of Montreal, roughly.
	baseLon, baseLat := -73.75, 45.45

	for i := 0; i < *zones; i++ {
		lon := baseLon + rng.Float64()*0.35
		lat := baseLat + rng.Float64()*0.15

		f := geojson.NewFeature(squareAround(lon, lat, 0.01))
		f.Properties = geojson.Properties{
			"title": fmt.Sprintf("Residence %02d", i+1),
		}
		for name, r := range metricRanges {
			f.Properties[name] = float64(int(r[0] + rng.Float64()*(r[1]-r[0])))
		}
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		log.Fatalf("marshal feature collection: %v", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("write %s: %v", *out, err)
	}
	fmt.Printf("wrote %d zones to %s\n", *zones, *out)
}

func squareAround(lon, lat, half float64) orb.Polygon {
	return orb.Polygon{orb.Ring{
		{lon - half, lat - half},
		{lon + half, lat - half},
		{lon + half, lat + half},
		{lon - half, lat + half},
		{lon - half, lat - half},
	}}
}
