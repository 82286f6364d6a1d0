/*
 * Copyright 2025 stratumhq.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package bidding

import (
	"math"

	"github.com/stratumhq/stratum/types"
	"github.com/stratumhq/stratum/utils"
)

const (
	skillWeight      = 0.7
	trackWeight      = 0.3
	trackRecordCap   = 20
	earthRadiusKM    = 6371.0
	maxScoreDistance = 500.0
)

// EligibilityScore rates a provider for a project on a 0 to 100 scale:
// the overlap between the project's required skills and the provider's
// skills, blended with a completed-projects track record. Providers with no
// completed projects get their skill score weighted by newProviderPct so a
// cold start is a tunable, not a wall.
func EligibilityScore(required, skills types.JSONStrings, completedProjects int, newProviderPct float64) float64 {
	overlap := 1.0
	if len(required) > 0 {
		matched := 0
		for _, skill := range required {
			if skills.Contains(skill) {
				matched++
			}
		}
		overlap = float64(matched) / float64(len(required))
	}

	if completedProjects <= 0 {
		return utils.TruncateToPrecision(overlap*newProviderPct, 2)
	}

	track := math.Min(float64(completedProjects), trackRecordCap) / trackRecordCap
	return utils.TruncateToPrecision((skillWeight*overlap+trackWeight*track)*100, 2)
}

// GeoScore rates provider proximity to the project site on a banded 0 to
// 100 scale. Missing coordinates on either side score zero.
func GeoScore(provLat, provLon, projLat, projLon *float64) float64 {
	if provLat == nil || provLon == nil || projLat == nil || projLon == nil {
		return 0
	}
	km := haversineKM(*provLat, *provLon, *projLat, *projLon)
	switch {
	case km <= 10:
		return 100
	case km <= 50:
		return 80
	case km <= 100:
		return 60
	case km <= 250:
		return 40
	case km <= maxScoreDistance:
		return 20
	default:
		return 0
	}
}

func haversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKM * math.Asin(math.Sqrt(a))
}
