package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/bobmcallan/vire-tracker/internal/handlers"
	"github.com/bobmcallan/vire-tracker/internal/resolver"
)

// RegisterTools adds the tracker tools to s and returns how many were registered.
func RegisterTools(s *server.MCPServer, svc Services) int {
	tools := []server.ServerTool{
		{Tool: VersionTool(), Handler: VersionToolHandler()},
	}
	if svc.Market != nil {
		tools = append(tools,
			server.ServerTool{Tool: quotesTool(), Handler: quotesHandler(svc)},
			server.ServerTool{Tool: newsTool(), Handler: newsHandler(svc)},
		)
	}
	if svc.Portfolio != nil {
		tools = append(tools, server.ServerTool{Tool: portfolioTool(), Handler: portfolioHandler(svc)})
	}
	if svc.Recommend != nil {
		tools = append(tools, server.ServerTool{Tool: recommendTool(), Handler: recommendHandler(svc)})
	}
	s.AddTools(tools...)
	return len(tools)
}

func quotesTool() mcp.Tool {
	return mcp.NewTool("get_quotes",
		mcp.WithDescription("Get current price quotes. Symbols that cannot be priced carry an error field."),
		mcp.WithString("symbols",
			mcp.Required(),
			mcp.Description("Comma-separated ticker symbols, e.g. AAPL,MSFT"),
		),
	)
}

func quotesHandler(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		symbols := handlers.SplitSymbols(r.GetString("symbols", ""))
		if len(symbols) == 0 {
			return errorResult("Error: symbols parameter is required"), nil
		}
		quotes, err := svc.Market.GetStockQuotes(ctx, symbols)
		if err != nil {
			return serviceError(err), nil
		}
		return jsonResult(quotes)
	}
}

func newsTool() mcp.Tool {
	return mcp.NewTool("get_market_news",
		mcp.WithDescription("Get recent market news articles."),
		mcp.WithString("category",
			mcp.Description("News category: general, forex, crypto or merger. Defaults to general."),
		),
	)
}

func newsHandler(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		items, err := svc.Market.FetchMarketNews(ctx, r.GetString("category", ""))
		if err != nil {
			return serviceError(err), nil
		}
		return jsonResult(items)
	}
}

func portfolioTool() mcp.Tool {
	return mcp.NewTool("get_portfolio",
		mcp.WithDescription("Value the stored holdings: total value, cost, gain and sector allocation."),
	)
}

func portfolioHandler(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		summary, err := svc.Portfolio.GetPortfolioValue(ctx)
		if err != nil {
			return serviceError(err), nil
		}
		return jsonResult(summary)
	}
}

func recommendTool() mcp.Tool {
	return mcp.NewTool("get_recommendations",
		mcp.WithDescription("Get BUY/HOLD/SELL suggestions for the given symbols and every held position."),
		mcp.WithString("symbols",
			mcp.Description("Optional comma-separated ticker symbols in addition to held positions"),
		),
	)
}

func recommendHandler(svc Services) server.ToolHandlerFunc {
	return func(ctx context.Context, r mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		recs, err := svc.Recommend.Recommend(ctx, handlers.SplitSymbols(r.GetString("symbols", "")))
		if err != nil {
			return serviceError(err), nil
		}
		return jsonResult(recs)
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return errorResult(fmt.Sprintf("Error: failed to marshal result: %v", err)), nil
	}
	return &mcp.CallToolResult{Content: []mcp.Content{mcp.NewTextContent(string(out))}}, nil
}

// serviceError renders a service failure, naming the providers when all of them failed.
func serviceError(err error) *mcp.CallToolResult {
	var apf *resolver.AllProvidersFailedError
	if errors.As(err, &apf) {
		return errorResult(fmt.Sprintf("Error: all providers failed (%s)", strings.Join(apf.Providers(), ", ")))
	}
	return errorResult(fmt.Sprintf("Error: %v", err))
}

// errorResult creates an MCP error result.
func errorResult(message string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.NewTextContent(message),
		},
		IsError: true,
	}
}
