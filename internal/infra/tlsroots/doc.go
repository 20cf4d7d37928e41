// Package tlsroots builds the trust store used to reach the gym backend.
//
// The system roots are always included. A deployment that fronts the
// backend with a private CA adds its bundle through tls_ca_file or --ca-file.
package tlsroots
