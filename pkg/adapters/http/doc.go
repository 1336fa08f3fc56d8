/*
Package http holds the HTTP adapters of parley.

  - Client: the Answer Service client (POST {base}/ask, POST {base}/handleResponse).
  - NewAnswerHandler: serves the same contract from any ports.AnswerService.
  - NewHandler: a JSON + SSE API driving one dialog, described by the embedded
    openapi.yaml.
*/
package http
