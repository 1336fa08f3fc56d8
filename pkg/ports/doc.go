/*
Package ports defines the ports (interfaces) of the parley dialog.

These interfaces decouple the Dialog Controller from external implementations,
allowing it to talk to any Answer Service transport and any cache backend.

# Key Interfaces

  - AnswerService: asks questions and resolves disambiguation on the remote service.
  - AnswerCache: stores answers for repeated questions (Memory, Redis).
  - Dialog: the driving port used by front-ends (terminal, HTTP, MCP).
*/
package ports
