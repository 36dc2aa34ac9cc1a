package api

import (
	"net/http"

	"github.com/lejapetric/simon/errs"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/ulule/limiter/v3"
	stdlib "github.com/ulule/limiter/v3/drivers/middleware/stdlib"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

const rateLimitPrefix = "catalog:contact"

// newIPRateLimiter limits requests per client IP. rateFormatted is in the
// limiter format ("5-M", "100-H"); empty disables limiting. Counters live in
// Redis when a client is given so every instance shares them.
func newIPRateLimiter(rateFormatted string, redisClient *redis.Client) (func(next http.Handler) http.Handler, error) {
	if rateFormatted == "" {
		return noopMiddleware, nil
	}
	rate, err := limiter.NewRateFromFormatted(rateFormatted)
	if err != nil {
		return nil, err
	}

	var store limiter.Store
	if redisClient != nil {
		store, err = sredis.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: rateLimitPrefix})
		if err != nil {
			return nil, err
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          rateLimitPrefix,
			CleanUpInterval: limiter.DefaultCleanUpInterval,
		})
	}

	responder := NewResponder(log.With().Str("handlerName", "rateLimiter").Logger())
	instance := limiter.New(store, rate)
	return stdlib.NewMiddleware(instance,
		stdlib.WithLimitReachedHandler(func(w http.ResponseWriter, r *http.Request) {
			responder.WriteError(w, errs.NewRateLimitError())
		}),
		stdlib.WithErrorHandler(func(w http.ResponseWriter, r *http.Request, err error) {
			responder.WriteError(w, errs.NewDatabaseError("check", "rate limit", err))
		}),
	).Handler, nil
}

func noopMiddleware(next http.Handler) http.Handler {
	return next
}
