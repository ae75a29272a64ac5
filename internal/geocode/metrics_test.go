package geocode

// promauto registers on the default registry, so the test binary gets
// exactly one Metrics instance shared by every suite in the package.
var testMetrics = NewMetrics()
