package cli

import (
	"strings"

	"github.com/DHariharanD/Smart-Task-Analyser/internal/core"
	"github.com/DHariharanD/Smart-Task-Analyser/pkg/models"
	"github.com/spf13/cobra"
)

// completeTaskIDs returns a completion function that lists saved task IDs
// with their titles as descriptions.
func completeTaskIDs() func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		if TaskMgr == nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		tasks, err := TaskMgr.ListTasks(core.TaskQuery{})
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		var ids []string
		for _, task := range tasks {
			if toComplete == "" || strings.HasPrefix(task.ID, toComplete) {
				ids = append(ids, task.ID+"\t"+task.Title)
			}
		}

		return ids, cobra.ShellCompDirectiveNoFileComp
	}
}

// completeStrategies lists the strategy names accepted by --strategy.
func completeStrategies(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, s := range models.ValidStrategies() {
		names = append(names, string(s)+"\t"+s.DisplayName())
	}
	names = append(names,
		string(models.StrategySmartBalanceDeveloper)+"\tSmart Balance for developers",
		string(models.StrategySmartBalancePM)+"\tSmart Balance for program managers",
	)
	return names, cobra.ShellCompDirectiveNoFileComp
}

// completeRoles lists the roles accepted by --role.
func completeRoles(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, r := range models.ValidRoles() {
		names = append(names, string(r)+"\t"+r.DisplayName())
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
