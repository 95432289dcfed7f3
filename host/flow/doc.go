// Package flow exposes registered actions as a fluxor service so workflows can
// call node actions like any other fluxor action.
package flow
