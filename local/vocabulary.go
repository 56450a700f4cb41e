/*
Copyright © 2021 the odg authors.
This file is part of odg.

odg is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

odg is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with odg.  If not, see <http://www.gnu.org/licenses/>.
*/

package local

import "sort"

// StandardNames are the CF standard names of the ocean and
// near-surface atmosphere variables that may be requested from a
// region Reader.
var StandardNames = []string{
	"air_pressure_at_mean_sea_level",
	"air_temperature",
	"depth",
	"dew_point_temperature",
	"downward_heat_flux_in_sea_ice",
	"eastward_sea_water_velocity",
	"eastward_wind",
	"mass_concentration_of_chlorophyll_a_in_sea_water",
	"mass_concentration_of_oxygen_in_sea_water",
	"mole_concentration_of_dissolved_molecular_oxygen_in_sea_water",
	"mole_concentration_of_nitrate_in_sea_water",
	"mole_concentration_of_phosphate_in_sea_water",
	"mole_concentration_of_silicate_in_sea_water",
	"northward_sea_water_velocity",
	"northward_wind",
	"ocean_mixed_layer_thickness",
	"relative_humidity",
	"sea_floor_depth_below_sea_surface",
	"sea_ice_area_fraction",
	"sea_ice_thickness",
	"sea_surface_height_above_geoid",
	"sea_surface_height_above_sea_level",
	"sea_surface_swell_wave_period",
	"sea_surface_temperature",
	"sea_surface_wave_from_direction",
	"sea_surface_wave_mean_period",
	"sea_surface_wave_significant_height",
	"sea_surface_wind_wave_period",
	"sea_water_density",
	"sea_water_electrical_conductivity",
	"sea_water_ph_reported_on_total_scale",
	"sea_water_practical_salinity",
	"sea_water_pressure",
	"sea_water_salinity",
	"sea_water_speed",
	"sea_water_temperature",
	"sea_water_turbidity",
	"sea_water_velocity_from_direction",
	"sea_water_velocity_to_direction",
	"surface_downwelling_photosynthetic_radiative_flux_in_air",
	"upward_sea_water_velocity",
	"water_surface_height_above_reference_datum",
	"wind_from_direction",
	"wind_speed",
	"wind_speed_of_gust",
}

// vocabulary is a set of allowed variable names.
type vocabulary map[string]bool

func newVocabulary(names []string) vocabulary {
	if names == nil {
		names = StandardNames
	}
	v := make(vocabulary, len(names))
	for _, n := range names {
		v[n] = true
	}
	return v
}

// unknown returns the requested names that are not in v, sorted.
func (v vocabulary) unknown(names []string) []string {
	var o []string
	for _, n := range names {
		if !v[n] {
			o = append(o, n)
		}
	}
	sort.Strings(o)
	return o
}
