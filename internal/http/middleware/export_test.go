package middleware

func (r *RateLimiter) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.m)
}

func (r *RateLimiter) EvictIdle() int {
	return r.evictIdle()
}
