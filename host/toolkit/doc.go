// Package toolkit provides the per-node factory for actions and events. A
// Toolkit is the only component that writes to the registry: it creates,
// registers and remembers every handle of its node and closes them all when
// the node is torn down.
package toolkit
