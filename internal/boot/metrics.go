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

package boot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bootPasses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relay",
		Subsystem: "boot",
		Name:      "passes_total",
		Help:      "Boot passes by path and result.",
	}, []string{"path", "result"})

	stepFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relay",
		Subsystem: "boot",
		Name:      "step_failures_total",
		Help:      "Delegated setup step failures by step name.",
	}, []string{"step"})
)

func recordPass(path string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	bootPasses.WithLabelValues(path, result).Inc()
}

func recordStepFailure(step string) {
	stepFailures.WithLabelValues(step).Inc()
}
