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

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONStringsRoundTrip(t *testing.T) {
	src := JSONStrings{"go", "sql"}

	value, err := src.Value()
	require.NoError(t, err)

	var dst JSONStrings
	require.NoError(t, dst.Scan(value))
	assert.Equal(t, src, dst)
}

func TestJSONStringsScanNil(t *testing.T) {
	var dst JSONStrings
	require.NoError(t, dst.Scan(nil))
	assert.NotNil(t, dst)
	assert.Empty(t, dst)
}

func TestJSONStringsScanString(t *testing.T) {
	var dst JSONStrings
	require.NoError(t, dst.Scan(`["a","b"]`))
	assert.Equal(t, JSONStrings{"a", "b"}, dst)
}

func TestJSONStringsScanBadType(t *testing.T) {
	var dst JSONStrings
	assert.Error(t, dst.Scan(42))
}

func TestJSONStringsContains(t *testing.T) {
	tags := JSONStrings{"go", "sql"}
	assert.True(t, tags.Contains("go"))
	assert.False(t, tags.Contains("rust"))
	assert.False(t, JSONStrings(nil).Contains("go"))
}

func TestJSONObjectRoundTrip(t *testing.T) {
	src := JSONObject{"region": "eu", "tier": "gold"}

	value, err := src.Value()
	require.NoError(t, err)

	var dst JSONObject
	require.NoError(t, dst.Scan(value))
	assert.Equal(t, src, dst)
}

func TestJSONValueNil(t *testing.T) {
	value, err := JSONStrings(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, value)
}
