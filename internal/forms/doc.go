// Package forms provides read access to Google Forms and their responses.
//
// Forms are parsed into typed questions (TEXT, PARAGRAPH, CHOICE, CHECKBOX,
// DROPDOWN, SCALE, DATE, TIME, FILE_UPLOAD, GRID); responses can be listed
// raw, pivoted into rows keyed by question title, or aggregated into
// per-question statistics with answer distributions for choice questions.
package forms
