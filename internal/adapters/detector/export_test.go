package detector

// Detect exposes detect for tests.
var Detect = detect
