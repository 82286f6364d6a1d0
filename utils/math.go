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

package utils

import "math"

// TruncateToPrecision cuts v to the given number of decimal places without
// rounding: TruncateToPrecision(100.999, 2) is 100.99.
func TruncateToPrecision(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Trunc(v*scale) / scale
}
