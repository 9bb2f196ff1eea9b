// Package gsheets implements the recorder backend on the Google Sheets v4 API.
package gsheets
