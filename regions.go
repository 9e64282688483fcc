package mimecast

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultBaseURL is the global API root used when no region is selected.
const DefaultBaseURL = "https://api.services.mimecast.com"

// Region identifies a Mimecast hosting region. Each region has its own API
// base URL.
type Region string

// Supported regions.
const (
	RegionEU  Region = "eu"  // Europe (excluding Germany)
	RegionDE  Region = "de"  // Germany
	RegionUS  Region = "us"  // United States of America
	RegionUSB Region = "usb" // United States of America (USB)
	RegionCA  Region = "ca"  // Canada
	RegionZA  Region = "za"  // South Africa
	RegionAU  Region = "au"  // Australia
	RegionJE  Region = "je"  // Offshore
)

var regionDescriptions = map[Region]string{
	RegionEU:  "Europe (excluding Germany)",
	RegionDE:  "Germany",
	RegionUS:  "United States of America",
	RegionUSB: "United States of America (USB)",
	RegionCA:  "Canada",
	RegionZA:  "South Africa",
	RegionAU:  "Australia",
	RegionJE:  "Offshore",
}

// BaseURL returns the API root for the region.
func (r Region) BaseURL() string {
	return fmt.Sprintf("https://%s-api.mimecast.com", string(r))
}

// Description returns the human-readable region name, or "" for an unknown
// region.
func (r Region) Description() string {
	return regionDescriptions[Region(strings.ToLower(string(r)))]
}

// Valid reports whether r is a known region code.
func (r Region) Valid() bool {
	_, ok := regionDescriptions[Region(strings.ToLower(string(r)))]
	return ok
}

// Regions returns all known region codes in sorted order.
func Regions() []Region {
	regions := make([]Region, 0, len(regionDescriptions))
	for r := range regionDescriptions {
		regions = append(regions, r)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i] < regions[j] })
	return regions
}
