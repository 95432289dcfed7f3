// Package syncmap offers a small generic map guarded by a single
// sync.RWMutex. Besides plain Get/Set/Delete it provides the conditional
// operations the name registry relies on: insert-if-absent and
// delete-if-same.
package syncmap
