// Package submit posts form data to the community API and normalises the reply.
//
// A submission is a multipart POST of every form field, in form order, with file
// attachments passed through unmodified. The request carries the caller's
// identity headers. The response envelope is {"status": "success"|..., "message":
// ..., <field>: [...]}; a submission succeeds only when the HTTP status is 2xx and
// the envelope status is "success". Everything else, including network failures
// and non-JSON bodies, is reported as a failed Result rather than an error.
package submit
