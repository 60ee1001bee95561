// Copyright 2024 The excel-pipeline Authors. All rights reserved.
// Use of this source code is governed by an MIT-style license
// that can be found in the LICENSE file.

/*
Package excelpipeline fetches tabular data from REST APIs, object storage and SQL databases and renders it to a
single multi-sheet Excel workbook.

excel-pipeline can be used from the command line but is really intended to be run from a cron job to produce
a periodic report from a pipeline configuration file. Each configured source becomes one worksheet, named after
the source, and the rendered workbook is optionally published to Google Cloud Storage (or S3/MinIO), Google Drive
and Google Sheets.

excel-pipeline supports the following commands:

  - run, to fetch the configured sources and render (and publish) the workbook
  - validate, to check a pipeline configuration file without fetching any data
  - extract, to fetch a single source and store it as a TSV file
  - inspect, to list the worksheets of a rendered workbook
  - authorise, to authorise access to Google Drive, Sheets and Cloud Storage with OAuth2 client credentials
  - version, to display the current version
*/
package excelpipeline
