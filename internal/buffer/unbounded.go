package buffer

// Unbounded creates a channel buffer that grows as needed.
// It returns a write-only channel to feed data in, and a read-only channel to read data out.
//
// initialCap: The starting size of the backing slice.
// hardLimit: The maximum number of items to buffer before dropping the oldest.
// onDrop: Called from the buffer goroutine with the running drop count each
// time an item is discarded. May be nil.
//
// Closing the input flushes whatever is queued and then closes the output.
//
// Usage:
//
//	in, out := buffer.Unbounded[event.Result](64, 10000, nil)
//	in <- r
//	r := <-out
func Unbounded[T any](initialCap int, hardLimit int, onDrop func(dropped int)) (chan<- T, <-chan T) {
	if hardLimit <= 0 {
		hardLimit = 1
	}
	in := make(chan T, 10)
	out := make(chan T, 10)

	go func() {
		defer close(out)

		queue := make([]T, 0, initialCap)
		dropped := 0

		for {
			var next T
			var downstream chan T

			// Enable the 'out' case only if we have data to send.
			if len(queue) > 0 {
				next = queue[0]
				downstream = out
			}

			select {
			case val, ok := <-in:
				if !ok {
					for _, item := range queue {
						out <- item
					}
					return
				}

				// A consumer that stopped draining must not grow the queue forever.
				if len(queue) >= hardLimit {
					var zero T
					queue[0] = zero
					queue = queue[1:]
					dropped++
					if onDrop != nil {
						onDrop(dropped)
					}
				}

				queue = append(queue, val)

			case downstream <- next:
				var zero T
				queue[0] = zero
				queue = queue[1:]
			}
		}
	}()

	return in, out
}
