package queue

// Test-only helpers to keep test names stable while constructors are unexported.

func NewMemoryQueue() *MemoryQueue {
	return newMemoryQueue()
}
