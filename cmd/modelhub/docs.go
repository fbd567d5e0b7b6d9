package main

// General API documentation for swaggo. Regenerate with `swag init -g cmd/modelhub/docs.go -o internal/apidocs`.
//
// @title           modelhub API
// @version         1.0
// @description     HTTP API for model artifact downloads and the model loading cache.
//
// @contact.name   modelhub maintainers
// @contact.url    https://github.com/your-org/modelhub
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
