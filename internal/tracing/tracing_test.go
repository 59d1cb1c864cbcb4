// Copyright 2026 The Relay Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tracing

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitExportsSpans(t *testing.T) {
	buf := &bytes.Buffer{}
	p, err := Init(buf, "test")
	require.NoError(t, err)

	_, span := p.Tracer("relay/boot").Start(context.Background(), "boot.test-step")
	span.End()

	require.NoError(t, p.Shutdown(context.Background()))
	assert.True(t, strings.Contains(buf.String(), "boot.test-step"),
		"exported spans missing the boot step span: %s", buf.String())
}
