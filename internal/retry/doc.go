// Package retry provides retry logic with exponential backoff for transient
// failures of catalog lookups and source database connections.
//
// # Example Usage
//
//	classifier := retry.NewHTTPErrorClassifier()
//	strategy := retry.NewExponentialBackoff(2)
//	executor := retry.NewExecutor(classifier, strategy)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return lookup(ctx)
//	})
//
// # Error Classification
//
// HTTPErrorClassifier treats network failures and the 429/502/503/504 statuses
// as transient. PostgreSQLErrorClassifier recognises the connection-class SQLSTATE
// codes a PostgreSQL source reports while starting up or under load.
//
// A retried call still produces exactly one final result: callers see the
// outcome of the last attempt and nothing else.
package retry
