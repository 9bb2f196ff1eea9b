/*
Package recorder deduplicates error reports into the rows of a spreadsheet.

Each report is routed to the worksheet whose title matches the report 'type'. A report that
matches an existing row (every field present in both, other than 'date', agrees on its first
400 characters) refreshes that row's 'date' column if it was last seen before today. A report
that matches nothing is appended as a new row.

The spreadsheet itself is abstracted behind Backend, see package gsheets for the Google Sheets
implementation.
*/
package recorder
