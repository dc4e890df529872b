package logging

// EnvConfig exposes envConfig to the external tests.
var EnvConfig = envConfig
