/*
Package domain contains the core domain models for the Espalier editor.

It defines the configuration shapes for dynamically sourced choice options,
the transform pipeline description applied to a list variable, and the link
relationship between a question and a shared List Tools block. This package is
kept pure and free of external dependencies like I/O or persistence, following
Hexagonal Architecture principles.

# Key Entities

  - TransformConfig: Declarative description of a list transformation
    (filter, sort, window, select, dedupe). Pure value, never executed here.
  - DynamicOptionsConfig: A choice question's option-sourcing configuration,
    including its link relationship.
  - LinkState: Tagged variant (Unlinked or Linked) so that illegal
    transform/link combinations are unrepresentable.
  - ListToolsBlock: An independently addressable transform unit owned by the
    page, referenced by id from linked questions.
*/
package domain
