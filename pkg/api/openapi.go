// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"fmt"
	"iter"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/telekom/icmptrace/internal/logger"
	"github.com/telekom/icmptrace/pkg/checks"
)

const defaultVersion = "dev"

// ResultPath returns the path serving the latest result of the named check.
func ResultPath(check string) string {
	return fmt.Sprintf("/v1/metrics/%s", check)
}

// OpenAPI builds the OpenAPI document describing the result endpoints of the given checks.
func OpenAPI(ctx context.Context, version string, cks iter.Seq[checks.Check]) (openapi3.T, error) {
	log := logger.FromContext(ctx)
	if version == "" {
		version = defaultVersion
	}

	doc := openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       "icmptrace",
			Description: "Latest traceroute results collected by the icmptrace monitor",
			Version:     version,
		},
		Paths: openapi3.NewPaths(),
	}

	for c := range cks {
		name := c.Name()
		ref, err := c.Schema()
		if err != nil {
			log.ErrorContext(ctx, "Failed to get schema for check", "name", name, "error", err)
			return openapi3.T{}, ErrCreateOpenapiSchema{name: name, err: err}
		}

		desc := fmt.Sprintf("Returns the latest result of the %s check", name)
		doc.Paths.Set(ResultPath(name), &openapi3.PathItem{
			Description: desc,
			Get: &openapi3.Operation{
				Description: desc,
				Tags:        []string{"Metrics", name},
				Responses: openapi3.NewResponses(
					openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
						Value: openapi3.NewResponse().WithDescription(desc).WithJSONSchemaRef(ref),
					}),
					openapi3.WithStatus(http.StatusNotFound, &openapi3.ResponseRef{
						Value: openapi3.NewResponse().WithDescription("The check has not produced a result yet"),
					}),
				),
			},
		})
	}

	return doc, nil
}
