// Package config loads, normalizes, and validates the TOML configuration
// shared by the vlooo CLI and the vloood proxy daemon.
//
// Configuration resolution order: an explicit --config path, then
// ~/.config/vlooo/config.toml, then ./vlooo.toml. Environment values loaded
// from .env (VLOOO_BACKEND_URL, VLOOO_BACKEND_API_KEY) override the backend
// section so deployments can keep credentials out of the file.
package config
