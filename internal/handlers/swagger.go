package handlers

// @title Users API
// @version 1.0
// @description Lists and creates rows of the users table.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /

// @tag.name users
// @tag.description User listing and creation
