// Copyright 2023 uhppoted@twyst.co.za. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

/*
Package uhppoted-app-errors records error reports in a Google Sheets spreadsheet, with one worksheet per error
type.

Reports are deduplicated: a report that matches an existing row only updates the 'date' on which the error was
last seen, so the worksheets hold one row per distinct error rather than one row per occurrence.

uhppoted-app-errors supports the following commands:

  - record, to record a single error report
  - serve, to run an HTTP server that records error reports POSTed to /errors
  - get, to download the worksheet for an error type as a TSV file
  - put, to record each row of a TSV file as an error report
  - version, to display the application version
*/
package errors
